package feed

import (
	"fmt"
	"strings"

	"github.com/lienzo/lienzo-go/internal/models"
)

// Filter describes which listing backs a feed and how it is ordered. The
// scope fields are combinable but only one decides the backing endpoint;
// precedence is tag, then saved, then following, then owner, then global.
type Filter struct {
	Type          models.PublicationType
	UserID        int64
	OnlyFollowing bool
	OnlySaved     bool
	Tag           string
	Sort          []string
}

// key renders a stable identity for the filter so the loader can tell two
// descriptors apart without comparing slices.
func (f Filter) key() string {
	return fmt.Sprintf("%s|%d|%t|%t|%s|%s",
		f.Type, f.UserID, f.OnlyFollowing, f.OnlySaved, f.Tag, strings.Join(f.Sort, ","))
}
