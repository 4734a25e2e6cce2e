package config

import (
	"path/filepath"
	"testing"
)

func TestDiscoverPathsOrder(t *testing.T) {
	layers := DiscoverPaths(DiscoverOptions{
		ProjectPath:      "./gist-crawler.yaml",
		SystemConfigPath: "/etc/gist-crawler/gist-crawler.yaml",
		UserConfigPath:   "/home/user/.config/gist-crawler/gist-crawler.yaml",
	})

	want := []ConfigLevel{LevelSystem, LevelUser, LevelProject}
	if len(layers) != len(want) {
		t.Fatalf("expected %d layers, got %d", len(want), len(layers))
	}
	for i, level := range want {
		if layers[i].Level != level {
			t.Errorf("layers[%d].Level = %q, want %q", i, layers[i].Level, level)
		}
	}
}

func TestDiscoverPathsDedupesSameFile(t *testing.T) {
	same, err := filepath.Abs("./gist-crawler.yaml")
	if err != nil {
		t.Fatal(err)
	}

	layers := DiscoverPaths(DiscoverOptions{
		ProjectPath:      "./gist-crawler.yaml",
		SystemConfigPath: same,
		UserConfigPath:   "/elsewhere/gist-crawler.yaml",
	})

	if len(layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(layers))
	}
	if layers[0].Level != LevelSystem || layers[1].Level != LevelUser {
		t.Errorf("unexpected levels: %q, %q", layers[0].Level, layers[1].Level)
	}
}

func TestDiscoverPathsNoInherit(t *testing.T) {
	layers := DiscoverPaths(DiscoverOptions{
		ProjectPath:      "./gist-crawler.yaml",
		SystemConfigPath: "/etc/gist-crawler/gist-crawler.yaml",
		NoInherit:        true,
	})

	if len(layers) != 1 || layers[0].Level != LevelProject {
		t.Fatalf("expected only the project layer, got %+v", layers)
	}
}

func TestDiscoverPathsNoProject(t *testing.T) {
	layers := DiscoverPaths(DiscoverOptions{
		SystemConfigPath: "/etc/gist-crawler/gist-crawler.yaml",
		UserConfigPath:   "/home/user/.config/gist-crawler/gist-crawler.yaml",
	})
	if len(layers) != 2 {
		t.Fatalf("expected 2 layers, got %d", len(layers))
	}
}

func TestEnvNoInherit(t *testing.T) {
	for _, tc := range []struct {
		val  string
		want bool
	}{
		{"", false},
		{"1", true},
		{"true", true},
		{" TRUE ", true},
		{"0", false},
		{"yes", false},
	} {
		t.Setenv("GIST_CRAWLER_NO_INHERIT", tc.val)
		if got := EnvNoInherit(); got != tc.want {
			t.Errorf("EnvNoInherit() with %q = %v, want %v", tc.val, got, tc.want)
		}
	}
}
