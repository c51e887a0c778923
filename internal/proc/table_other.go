//go:build !linux

package proc

type unsupportedTable struct{}

func newPlatformTable(Options) Table {
	return unsupportedTable{}
}

func (unsupportedTable) Processes() ([]Process, error) {
	return nil, ErrNotImplemented
}
