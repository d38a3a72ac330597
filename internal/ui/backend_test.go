package ui

import "testing"

func TestBackendCandidates(t *testing.T) {
	cases := []struct {
		backend string
		want    []string
	}{
		{backend: "auto", want: []string{BackendBubbleTea, BackendHuh, BackendTView}},
		{backend: "", want: []string{BackendBubbleTea, BackendHuh, BackendTView}},
		{backend: "bubbletea", want: []string{BackendBubbleTea, BackendHuh, BackendTView}},
		{backend: "HUH", want: []string{BackendHuh, BackendBubbleTea, BackendTView}},
		{backend: "tview", want: []string{BackendTView, BackendBubbleTea, BackendHuh}},
		{backend: "plain", want: []string{BackendPlain}},
		{backend: "neon-ui", want: []string{BackendBubbleTea, BackendHuh, BackendTView}},
	}
	for _, tc := range cases {
		assertBackendOrder(t, tc.backend, backendCandidates(tc.backend), tc.want)
	}
}

func TestIsInteractiveBackend(t *testing.T) {
	if IsInteractiveBackend("plain") {
		t.Fatalf("plain backend must not be interactive")
	}
	if !IsInteractiveBackend("auto") || !IsInteractiveBackend("tview") {
		t.Fatalf("expected auto and tview to be interactive")
	}
}

func assertBackendOrder(t *testing.T, backend string, got []string, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%q: unexpected candidate length: got=%d want=%d", backend, len(got), len(want))
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("%q: candidate[%d] mismatch: got=%q want=%q", backend, idx, got[idx], want[idx])
		}
	}
}
