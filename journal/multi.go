package journal

import "errors"

// Multi fans every record out to several journals.
type Multi []Journal

func (m Multi) RecordDay(d DayRecord) error {
	var errs []error
	for _, j := range m {
		if err := j.RecordDay(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, j := range m {
		if err := j.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard is a Journal that drops every record.
type Discard struct{}

func (Discard) RecordDay(DayRecord) error { return nil }
func (Discard) Close() error              { return nil }
