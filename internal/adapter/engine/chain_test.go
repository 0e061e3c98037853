package engine

import (
	"strings"
	"testing"

	"metasearch/internal/infra/config"
)

func TestBuildChainDefaults(t *testing.T) {
	chain, err := BuildChain(config.Defaults(), newTestLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer chain.Close()

	if len(chain.Descriptors) != len(chainOrder) {
		t.Fatalf("len(Descriptors) = %d, want %d", len(chain.Descriptors), len(chainOrder))
	}
	for i, d := range chain.Descriptors {
		if d.Name != chainOrder[i] {
			t.Errorf("Descriptors[%d].Name = %q, want %q", i, d.Name, chainOrder[i])
		}
		if d.Priority != i {
			t.Errorf("Descriptors[%d].Priority = %d, want %d", i, d.Priority, i)
		}
		if d.Engine == nil {
			t.Errorf("Descriptors[%d].Engine is nil", i)
		}
		if d.Engine != nil && d.Engine.Name() != d.Name {
			t.Errorf("engine name %q does not match descriptor %q", d.Engine.Name(), d.Name)
		}
	}
	if !chain.Descriptors[0].RateLimited {
		t.Error("structured api descriptor should be rate limited")
	}
	for _, d := range chain.Descriptors[1:] {
		if d.RateLimited {
			t.Errorf("scraped engine %q should not be rate limited", d.Name)
		}
	}
}

func TestBuildChainDisablesEngines(t *testing.T) {
	cfg := config.Defaults()
	cfg.Engines.Overrides = []config.EngineConfig{
		{Name: NameGoogle, Disabled: true},
		{Name: NameYandex, Disabled: true},
	}

	chain, err := BuildChain(cfg, newTestLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer chain.Close()

	if len(chain.Descriptors) != len(chainOrder)-2 {
		t.Fatalf("len(Descriptors) = %d, want %d", len(chain.Descriptors), len(chainOrder)-2)
	}
	for i, d := range chain.Descriptors {
		if d.Name == NameGoogle || d.Name == NameYandex {
			t.Errorf("disabled engine %q still present", d.Name)
		}
		if d.Priority != i {
			t.Errorf("priorities not contiguous: Descriptors[%d].Priority = %d", i, d.Priority)
		}
	}
}

func TestBuildChainAllDisabledIsError(t *testing.T) {
	cfg := config.Defaults()
	for _, name := range chainOrder {
		cfg.Engines.Overrides = append(cfg.Engines.Overrides, config.EngineConfig{Name: name, Disabled: true})
	}

	_, err := BuildChain(cfg, newTestLogger())
	if err == nil {
		t.Fatal("expected error when every engine is disabled")
	}
	if !strings.Contains(err.Error(), "all engines disabled") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBuildChainBaseURLOverride(t *testing.T) {
	cfg := config.Defaults()
	cfg.Engines.Overrides = []config.EngineConfig{
		{Name: NameBing, BaseURL: "https://bing.mirror.example"},
	}

	chain, err := BuildChain(cfg, newTestLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer chain.Close()

	for _, d := range chain.Descriptors {
		if d.Name != NameBing {
			continue
		}
		s, ok := d.Engine.(*Scraper)
		if !ok {
			t.Fatalf("bing engine type = %T, want *Scraper", d.Engine)
		}
		if got := s.buildURL("q", 5); !strings.HasPrefix(got, "https://bing.mirror.example/search?") {
			t.Errorf("buildURL = %q, want mirror base", got)
		}
		return
	}
	t.Fatal("bing descriptor missing")
}

func TestChainCloseWithoutRenderer(t *testing.T) {
	chain := &Chain{}
	chain.Close()
}
