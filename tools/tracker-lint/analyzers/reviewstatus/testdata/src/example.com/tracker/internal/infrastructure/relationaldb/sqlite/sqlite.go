package sqlite

import "example.com/tracker/internal/domain/entities"

func scan(status string) entities.ReviewRecord {
	var rec entities.ReviewRecord
	rec.Status = entities.ReviewStatus(status)
	return rec
}
