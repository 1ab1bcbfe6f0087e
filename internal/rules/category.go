package rules

// PickCategory combines boosted scores and signals into a rule-only category
// with a confidence in [0,1]. The guardrails short-circuit in order and are
// never overridden by the margin heuristic below them.
func PickCategory(scores map[Category]int, sig Signals) (Category, float64) {
	cat1, s1, s2 := top2(scores)

	var conf float64
	if s1 > 0 {
		conf = clamp01(float64(s1-s2) / float64(max(1, s1)))
	}

	if sig.Unsubscribe && scores[CategorySpam] >= 12 {
		return CategorySpam, 0.95
	}
	if sig.TimeRange {
		return CategorySchedule, 0.95
	}

	if scores[CategorySpam] >= max(scores[CategorySchedule], scores[CategoryTask])+10 && scores[CategorySpam] >= 15 {
		return CategorySpam, max(conf, 0.85)
	}
	if scores[CategorySchedule] >= scores[CategoryTask]+6 && scores[CategorySchedule] >= 12 {
		return CategorySchedule, max(conf, 0.8)
	}
	if scores[CategoryTask] >= 10 {
		return CategoryTask, max(conf, 0.75)
	}

	if s1 <= 0 {
		return CategoryTask, 0.3
	}
	return cat1, max(conf, 0.55)
}

// top2 orders categories by score descending with a fixed tie order
// (SPAM, SCHEDULE, TASK) so results are deterministic.
func top2(scores map[Category]int) (Category, int, int) {
	cat1, s1 := Categories[0], scores[Categories[0]]
	s2 := -1
	for _, c := range Categories[1:] {
		s := scores[c]
		if s > s1 {
			cat1, s1, s2 = c, s, s1
		} else if s > s2 {
			s2 = s
		}
	}
	return cat1, s1, s2
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
