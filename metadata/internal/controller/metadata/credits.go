package metadata

import "github.com/abhishek622/movieticket/metadata/pkg/model"

// DedupeCast removes cast members whose name already appeared earlier in the
// list. The first occurrence wins regardless of id or character.
func DedupeCast(cast []model.CastMember) []model.CastMember {
	seen := make(map[string]struct{}, len(cast))
	res := make([]model.CastMember, 0, len(cast))
	for _, p := range cast {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		res = append(res, p)
	}
	return res
}

// Directors filters crew to directors and removes repeated names, keeping
// the first occurrence. An empty result is a valid outcome.
func Directors(crew []model.CrewMember) []model.CrewMember {
	seen := map[string]struct{}{}
	res := []model.CrewMember{}
	for _, p := range crew {
		if p.Job != model.JobDirector {
			continue
		}
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		res = append(res, p)
	}
	return res
}
