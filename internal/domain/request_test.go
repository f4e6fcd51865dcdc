package domain

import (
	"testing"

	"civic-portal/internal/xerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
	}{
		{"pending", StatusPending},
		{"Pending", StatusPending},
		{"IN-PROGRESS", StatusInProgress},
		{"  completed  ", StatusCompleted},
		{"Rejected", StatusRejected},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "done", "open", "in progress"} {
		_, err := ParseStatus(in)
		assert.ErrorIs(t, err, xerrors.ErrInvalidStatus, in)
	}
}
