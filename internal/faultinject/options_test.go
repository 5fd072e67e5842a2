package faultinject

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-at-pretension-io/addfi/internal/netlist"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		want      Options
		selection []string
		wantErr   error
	}{
		{
			name: "defaults",
			want: DefaultOptions(),
		},
		{
			name: "all_flags",
			args: []string{"-no-ff", "-no-comb", "-no-add-input", "-type", "and"},
			want: Options{Gate: GateAnd},
		},
		{
			name:      "selection_after_options",
			args:      []string{"-type", "or", "cpu/*", "alu"},
			want:      Options{InjectFF: true, InjectComb: true, AddInput: true, Gate: GateOr},
			selection: []string{"cpu/*", "alu"},
		},
		{
			name:    "missing_type_value",
			args:    []string{"-no-ff", "-type"},
			wantErr: ErrMissingType,
		},
		{
			name:    "invalid_type_value",
			args:    []string{"-type", "nand"},
			wantErr: ErrInvalidType,
		},
		{
			name:    "unknown_option",
			args:    []string{"-no-ff", "-bogus"},
			wantErr: netlist.ErrUnknownOption,
		},
		{
			name:    "option_after_selection",
			args:    []string{"top", "-no-comb"},
			wantErr: netlist.ErrUnknownOption,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.args, DefaultOptions())
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.InjectFF, got.InjectFF)
			assert.Equal(t, tt.want.InjectComb, got.InjectComb)
			assert.Equal(t, tt.want.AddInput, got.AddInput)
			assert.Equal(t, tt.want.Gate, got.Gate)
			assert.Equal(t, tt.selection, got.Selection.Patterns())
		})
	}
}

func TestParseArgsKeepsBaseSelection(t *testing.T) {
	sel, err := netlist.ParseSelection([]string{"leaf"})
	require.NoError(t, err)
	base := DefaultOptions()
	base.Selection = sel

	got, err := ParseArgs([]string{"-no-comb"}, base)
	require.NoError(t, err)
	assert.Equal(t, []string{"leaf"}, got.Selection.Patterns())
	assert.False(t, got.InjectComb)
}

func TestRunRejectsInvalidGate(t *testing.T) {
	d := threeLevelDesign()
	opts := DefaultOptions()
	opts.Gate = "nor"
	p, _ := quietPass(opts)

	_, err := p.Run(d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidType))
	// nothing was touched
	assert.Equal(t, []string{"clk", "d", "q"}, wireNames(d.Module("leaf")))
}
