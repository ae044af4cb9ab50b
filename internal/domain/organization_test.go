package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrganizationActionValidate(t *testing.T) {
	t.Parallel()

	const base = "/home/u/p/docs"

	tests := []struct {
		name    string
		action  OrganizationAction
		wantErr string
	}{
		{
			name:   "create inside base",
			action: OrganizationAction{Type: OrgCreateFolder, Path: "/home/u/p/docs/A_files"},
		},
		{
			name:    "create relative",
			action:  OrganizationAction{Type: OrgCreateFolder, Path: "A_files"},
			wantErr: "not absolute",
		},
		{
			name:    "create empty",
			action:  OrganizationAction{Type: OrgCreateFolder},
			wantErr: "path is required",
		},
		{
			name:    "create outside base",
			action:  OrganizationAction{Type: OrgCreateFolder, Path: "/home/u/p/other"},
			wantErr: "outside",
		},
		{
			name:    "create sibling with shared prefix",
			action:  OrganizationAction{Type: OrgCreateFolder, Path: "/home/u/p/docs2/x"},
			wantErr: "outside",
		},
		{
			name:    "create escaping with dot dot",
			action:  OrganizationAction{Type: OrgCreateFolder, Path: "/home/u/p/docs/../etc"},
			wantErr: "outside",
		},
		{
			name:   "move inside base",
			action: OrganizationAction{Type: OrgMoveItem, Source: "/home/u/p/docs/apple.txt", Destination: "/home/u/p/docs/A_files/apple.txt"},
		},
		{
			name:   "move back to base",
			action: OrganizationAction{Type: OrgMoveItem, Source: "/home/u/p/docs/A_files/apple.txt", Destination: "/home/u/p/docs"},
		},
		{
			name:    "move destination outside",
			action:  OrganizationAction{Type: OrgMoveItem, Source: "/home/u/p/docs/apple.txt", Destination: "/tmp/apple.txt"},
			wantErr: "destination",
		},
		{
			name:    "move source outside",
			action:  OrganizationAction{Type: OrgMoveItem, Source: "/etc/passwd", Destination: "/home/u/p/docs/passwd"},
			wantErr: "source",
		},
		{
			name:    "move same path",
			action:  OrganizationAction{Type: OrgMoveItem, Source: "/home/u/p/docs/a", Destination: "/home/u/p/docs/a/"},
			wantErr: "same",
		},
		{
			name:    "move relative destination",
			action:  OrganizationAction{Type: OrgMoveItem, Source: "/home/u/p/docs/a", Destination: "b"},
			wantErr: "not absolute",
		},
		{
			name:    "unknown type",
			action:  OrganizationAction{Type: "DELETE_ITEM", Path: "/home/u/p/docs/a"},
			wantErr: "unknown action type",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.action.Validate(base)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestValidatePlanKeepsOrderAndMarksInvalid(t *testing.T) {
	t.Parallel()

	plan := []OrganizationAction{
		{Type: OrgCreateFolder, Path: "/b/A_files"},
		{Type: OrgMoveItem, Source: "/b/apple.txt", Destination: "/elsewhere/apple.txt"},
		{Type: OrgMoveItem, Source: "/b/apple.txt", Destination: "/b/A_files/apple.txt"},
	}

	validated := ValidatePlan(plan, "/b")

	assert.Len(t, validated, 3)
	assert.True(t, validated[0].Valid())
	assert.False(t, validated[1].Valid())
	assert.True(t, validated[2].Valid())
	assert.Equal(t, plan[2], validated[2].Action)
}

func TestIsWithin(t *testing.T) {
	t.Parallel()

	assert.True(t, IsWithin("/a/b", "/a/b"))
	assert.True(t, IsWithin("/a/b", "/a/b/c/d"))
	assert.False(t, IsWithin("/a/b", "/a/bc"))
	assert.False(t, IsWithin("/a/b", "/a"))
	assert.False(t, IsWithin("/a/b", "/a/b/../c"))
}
