package platform

import (
	"runtime"
	"testing"
)

func TestParseDesktops(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "GNOME", want: []string{"GNOME"}},
		{in: "ubuntu:GNOME", want: []string{"ubuntu", "GNOME"}},
		{in: "KDE::XFCE:", want: []string{"KDE", "XFCE"}},
		{in: ":::", want: nil},
	}
	for _, tc := range cases {
		got := ParseDesktops(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("ParseDesktops(%q)=%#v want=%#v", tc.in, got, tc.want)
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Fatalf("ParseDesktops(%q)[%d]=%q want=%q", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}

func TestDetectReadsDesktopVariable(t *testing.T) {
	t.Setenv(DesktopEnvVar, "X-Cinnamon:GNOME")
	env := Detect()
	if env.Platform != Current() {
		t.Fatalf("expected platform %s, got %s", Current(), env.Platform)
	}
	if env.DesktopString() != "X-Cinnamon:GNOME" {
		t.Fatalf("unexpected desktops: %#v", env.Desktops)
	}
}

func TestWithDesktopsKeepsDetectedListWhenEmpty(t *testing.T) {
	env := Environment{Platform: Unix, Desktops: []string{"MATE"}}
	if got := env.WithDesktops("  ").DesktopString(); got != "MATE" {
		t.Fatalf("expected MATE to survive empty override, got %q", got)
	}
	if got := env.WithDesktops("XFCE:LXQt").DesktopString(); got != "XFCE:LXQt" {
		t.Fatalf("expected override, got %q", got)
	}
}

func TestCurrentMatchesBuildTarget(t *testing.T) {
	want := Unix
	switch runtime.GOOS {
	case "darwin":
		want = Apple
	case "windows", "plan9", "js", "wasip1":
		want = Other
	}
	if Current() != want {
		t.Fatalf("expected %s for %s, got %s", want, runtime.GOOS, Current())
	}
}
