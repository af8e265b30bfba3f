package client_test

import (
	"testing"

	"github.com/xraph/haulage/client"
)

func TestListOptsMatch(t *testing.T) {
	c := &client.Client{Name: "Maruti Roadways", Phone: "98250 11111"}

	tests := []struct {
		search string
		want   bool
	}{
		{"", true},
		{"  ", true},
		{"maruti", true},
		{"ROADWAYS", true},
		{" road ", true},
		{"98250", true},
		{"11111", true},
		{"patel", false},
		{"99999", false},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			if got := (client.ListOpts{Search: tt.search}).Match(c); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.search, got, tt.want)
			}
		})
	}
}
