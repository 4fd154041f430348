package a

import "example.com/tracker/internal/domain/entities"

func bad(r *entities.ReviewRecord) {
	r.Status = entities.StatusApproved // want "ReviewRecord.Status assigned directly"
}

func badValue(records []entities.ReviewRecord) {
	for i := range records {
		records[i].Status = entities.StatusPending // want "ReviewRecord.Status assigned directly"
	}
}

func suppressed(r *entities.ReviewRecord) {
	r.Status = entities.StatusPending //nolint:reviewstatus
}

func good(r *entities.ReviewRecord, f *entities.Filter) {
	r.Approve()
	f.Status = entities.StatusPending
	_ = entities.ReviewRecord{Status: entities.StatusPending}
}

type local struct{ Status string }

func goodOther(l *local) {
	l.Status = "x"
}
