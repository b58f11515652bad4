package version

import (
	"runtime/debug"
	"testing"
	"time"
)

func stubBuild(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	origRead := readBuildInfo
	origVersion, origCommit, origBuilt := Version, Commit, BuildTime
	t.Cleanup(func() {
		readBuildInfo = origRead
		Version, Commit, BuildTime = origVersion, origCommit, origBuilt
	})
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
}

func TestGetDefaults(t *testing.T) {
	stubBuild(t, nil)
	Version, Commit, BuildTime = "dev", "", ""

	info := Get()
	if info.Version != "dev" || info.Commit != "" || !info.BuiltAt.IsZero() {
		t.Errorf("unexpected info %+v", info)
	}
	if info.IsRelease() {
		t.Error("dev should not be a release")
	}
	if info.String() != "dev" {
		t.Errorf("expected 'dev', got %q", info.String())
	}
}

func TestGetFromBuildInfo(t *testing.T) {
	stubBuild(t, &debug.BuildInfo{
		GoVersion: "go1.26.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2026-01-02T15:04:05Z"},
		},
	})
	Version, Commit, BuildTime = "1.2.0", "", ""

	info := Get()
	if info.Commit != "0123456" {
		t.Errorf("expected short commit, got %q", info.Commit)
	}
	if !info.Dirty || info.IsRelease() {
		t.Errorf("expected dirty non-release, got %+v", info)
	}
	want := "1.2.0-0123456-dirty (built 2026-01-02T15:04:05Z)"
	if info.String() != want {
		t.Errorf("got %q, want %q", info.String(), want)
	}
}

func TestLinkTimeValuesWin(t *testing.T) {
	stubBuild(t, &debug.BuildInfo{
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "ffffffffffff"},
			{Key: "vcs.time", Value: "2020-01-01T00:00:00Z"},
		},
	})
	Version, Commit, BuildTime = "2.0.0", "abc1234", "2026-03-01T00:00:00Z"

	info := Get()
	if info.Commit != "abc1234" {
		t.Errorf("expected link-time commit, got %q", info.Commit)
	}
	if !info.BuiltAt.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected link-time build time, got %v", info.BuiltAt)
	}
	if !info.IsRelease() {
		t.Error("expected release")
	}
}
