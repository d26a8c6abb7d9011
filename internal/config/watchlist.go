package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/teamcutter/patches/internal/domain"
)

// A watchlist names the packages a batch scan checks:
//
//	[[package]]
//	name = "openssl"
//	version = "3.3.1"
type watchlist struct {
	Packages []struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
}

func LoadWatchlist(path string) ([]domain.Package, error) {
	var wl watchlist
	if _, err := toml.DecodeFile(path, &wl); err != nil {
		return nil, fmt.Errorf("reading watchlist %s: %w", path, err)
	}

	pkgs := make([]domain.Package, 0, len(wl.Packages))
	for i, entry := range wl.Packages {
		pkg, err := domain.ParsePackage(entry.Name, entry.Version)
		if err != nil {
			return nil, fmt.Errorf("watchlist %s: package %d: %w", path, i+1, err)
		}
		pkgs = append(pkgs, pkg)
	}

	return pkgs, nil
}
