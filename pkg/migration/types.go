package migration

import (
	"fmt"
	"time"
)

type Options struct {
	DryRun  bool
	Verbose bool
}

type Report struct {
	FilterImported    bool
	LastRunSet        bool
	LastDebugSet      bool
	WorkspacesAdded   int
	WorkspacesSkipped int
	Errors            []string
	StartTime         time.Time
	EndTime           time.Time
}

func NewReport() *Report {
	return &Report{
		StartTime: time.Now(),
	}
}

func (r *Report) AddError(subject string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", subject, err))
}

func (r *Report) Complete() {
	r.EndTime = time.Now()
}

func (r *Report) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
