package chart

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Identity is the opaque token the host uses for selection bookkeeping.
type Identity string

// identityNamespace scopes every identity linevis derives.
var identityNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://linevis.dev/identity"))

// NewIdentity derives a deterministic identity from parts. Equal parts
// always yield the same token, across processes and rebuilds.
func NewIdentity(parts ...string) Identity {
	return Identity(uuid.NewSHA1(identityNamespace, []byte(strings.Join(parts, "\x1f"))).String())
}

func pointIdentity(row, col int, series string, c Category) Identity {
	return NewIdentity("point", strconv.Itoa(row), strconv.Itoa(col), series, c.Key())
}

func seriesIdentity(row, col int, series string) Identity {
	return NewIdentity("series", strconv.Itoa(row), strconv.Itoa(col), series)
}
