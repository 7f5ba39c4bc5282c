package visitor

import (
	"testing"

	"github.com/storefront-bff/internal/pkg/id"
	"github.com/stretchr/testify/assert"
)

func TestResolve_IssuesIDWhenMissing(t *testing.T) {
	ident := Resolve("", "")
	assert.True(t, ident.Issued)
	assert.True(t, id.Valid(ident.ID))
}

func TestResolve_ReusesValidVisitorID(t *testing.T) {
	vid := id.New()
	ident := Resolve("", vid)
	assert.False(t, ident.Issued)
	assert.Equal(t, vid, ident.ID)
}

func TestResolve_ReplacesMalformedVisitorID(t *testing.T) {
	ident := Resolve("", "../../etc/passwd")
	assert.True(t, ident.Issued)
	assert.NotEqual(t, "../../etc/passwd", ident.ID)
}

func TestKey_UserWinsOverVisitor(t *testing.T) {
	vid := id.New()
	anon := Resolve("", vid)
	authed := Resolve("u1", vid)
	assert.NotEqual(t, anon.Key(), authed.Key())
	assert.Equal(t, authed.Key(), Resolve("u1", id.New()).Key(), "user key must not depend on visitor id")
	assert.Len(t, anon.Key(), 32)
}
