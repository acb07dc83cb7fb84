package photofailures

import "context"

// Repository defines persistence for photo failures
type Repository interface {
	Save(ctx context.Context, f *Failure) error
	ListByReport(ctx context.Context, client, reportID string, limit int) ([]*Failure, error)
}
