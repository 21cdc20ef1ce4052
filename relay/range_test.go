package relay_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/omni/bridge-relay/relay"
)

func TestNextScanRange(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		Name           string
		Input          [3]uint
		ExpectedOutput *relay.BlocksRange
	}{
		{
			Name:           "Head within confirmation window",
			Input:          [3]uint{100, 104, 5},
			ExpectedOutput: nil,
		},
		{
			Name:           "Safe tip equals cursor",
			Input:          [3]uint{100, 105, 5},
			ExpectedOutput: nil,
		},
		{
			Name:           "Single block becomes safe",
			Input:          [3]uint{100, 106, 5},
			ExpectedOutput: &relay.BlocksRange{From: 101, To: 101},
		},
		{
			Name:           "Wide safe range",
			Input:          [3]uint{100, 200, 12},
			ExpectedOutput: &relay.BlocksRange{From: 101, To: 188},
		},
		{
			Name:           "Zero confirmations scans up to the head",
			Input:          [3]uint{100, 105, 0},
			ExpectedOutput: &relay.BlocksRange{From: 101, To: 105},
		},
		{
			Name:           "Zero confirmations with no new blocks",
			Input:          [3]uint{100, 100, 0},
			ExpectedOutput: nil,
		},
		{
			Name:           "Confirmations exceed chain height",
			Input:          [3]uint{0, 5, 12},
			ExpectedOutput: nil,
		},
		{
			Name:           "Fresh cursor",
			Input:          [3]uint{0, 20, 5},
			ExpectedOutput: &relay.BlocksRange{From: 1, To: 15},
		},
	} {
		t.Logf("Running sub-test %q", test.Name)
		res := relay.NextScanRange(test.Input[0], test.Input[1], test.Input[2])
		require.Equal(t, test.ExpectedOutput, res, "Failed %s", test.Name)
	}
}

func TestSplitBlockRange(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		Name           string
		Input          [3]uint
		ExpectedOutput []*relay.BlocksRange
	}{
		{
			Name:  "Split range in two",
			Input: [3]uint{100, 199, 50},
			ExpectedOutput: []*relay.BlocksRange{
				{100, 149},
				{150, 199},
			},
		},
		{
			Name:  "Split range in three",
			Input: [3]uint{100, 200, 50},
			ExpectedOutput: []*relay.BlocksRange{
				{100, 149},
				{150, 199},
				{200, 200},
			},
		},
		{
			Name:  "Keep range as is",
			Input: [3]uint{100, 200, 101},
			ExpectedOutput: []*relay.BlocksRange{
				{100, 200},
			},
		},
		{
			Name:  "Keep range of one block",
			Input: [3]uint{100, 100, 10},
			ExpectedOutput: []*relay.BlocksRange{
				{100, 100},
			},
		},
		{
			Name:           "Invalid range",
			Input:          [3]uint{200, 100, 50},
			ExpectedOutput: []*relay.BlocksRange{},
		},
	} {
		t.Logf("Running sub-test %q", test.Name)
		res := relay.SplitBlockRange(test.Input[0], test.Input[1], test.Input[2])
		require.Equal(t, test.ExpectedOutput, res, "Failed %s", test.Name)
	}
}
