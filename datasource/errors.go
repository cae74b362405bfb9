package datasource

import (
	"fmt"

	"github.com/arrowquery/goquery/errs"
)

func errNoSuchColumn(name string) error {
	return fmt.Errorf("%w: %q", errs.ErrNoField, name)
}
