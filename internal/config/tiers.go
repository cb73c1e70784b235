package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"rainalert/internal/types"
)

// stockTiers carries the notification text for the default thresholds.
var stockTiers = map[int]types.ColdTier{
	15: {Threshold: 15, Title: "🧥 Cool Weather Alert", Advice: "A light jacket may be useful."},
	10: {Threshold: 10, Title: "❄️ Cold Weather Alert", Advice: "Dress warmly if heading out."},
	5:  {Threshold: 5, Title: "🧊 Very Cold Alert", Advice: "Cold conditions expected. Bundle up."},
	0:  {Threshold: 0, Title: "🥶 Freezing Alert", Advice: "Risk of frost or icy surfaces."},
}

// tiersFile is the on-disk shape of COLD_TIERS_FILE:
//
//	tiers:
//	  - threshold: 15
//	    title: "🧥 Cool Weather Alert"
//	    advice: "A light jacket may be useful."
//	  - threshold: 0
//	    title: "🥶 Freezing Alert"
//	    priority: 2
type tiersFile struct {
	Tiers []types.ColdTier `yaml:"tiers"`
}

// TiersFromThresholds builds tiers for the given thresholds, using the stock
// wording where one exists and a generic title otherwise. The result is
// ordered from highest to lowest threshold.
func TiersFromThresholds(thresholds []int, symbol string) []types.ColdTier {
	tiers := make([]types.ColdTier, 0, len(thresholds))
	for _, th := range thresholds {
		if stock, ok := stockTiers[th]; ok {
			tiers = append(tiers, stock)
			continue
		}
		tiers = append(tiers, types.ColdTier{
			Threshold: th,
			Title:     fmt.Sprintf("Cold Alert: %d%s", th, symbol),
			Advice:    "Dress for the cold.",
		})
	}
	sortTiers(tiers)
	return tiers
}

// LoadTiersFile reads a YAML tier file.
func LoadTiersFile(path string) ([]types.ColdTier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cold tier file %s: %w", path, err)
	}
	var f tiersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing cold tier file %s: %w", path, err)
	}
	if len(f.Tiers) == 0 {
		return nil, fmt.Errorf("cold tier file %s defines no tiers", path)
	}
	seen := make(map[int]bool, len(f.Tiers))
	for _, tier := range f.Tiers {
		if seen[tier.Threshold] {
			return nil, fmt.Errorf("cold tier file %s: duplicate threshold %d", path, tier.Threshold)
		}
		seen[tier.Threshold] = true
	}
	sortTiers(f.Tiers)
	return f.Tiers, nil
}

func sortTiers(tiers []types.ColdTier) {
	sort.SliceStable(tiers, func(i, j int) bool {
		return tiers[i].Threshold > tiers[j].Threshold
	})
}
