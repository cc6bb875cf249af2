package job

import "context"

// Repository persists jobs on the backend side.
type Repository interface {
	Create(ctx context.Context, j *Job) error
	Update(ctx context.Context, j *Job) error
	Get(ctx context.Context, id int64) (*Job, error)
	List(ctx context.Context, f Filter) ([]Job, error)
	Delete(ctx context.Context, id int64) error
}
