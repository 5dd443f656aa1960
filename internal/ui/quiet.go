package ui

// quietPresenter drains events without output.
type quietPresenter struct{}

func (quietPresenter) Run(events <-chan Event) error {
	for range events { //nolint:revive // the scan blocks on stage sends until drained
	}
	return nil
}

func (quietPresenter) Summary() string { return "" }
