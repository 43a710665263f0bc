package chain

// ScoreData is the recorded history of a batch run: the score names in
// effect, one snapshot per step, and the number of steps that were
// self-loops. Steps[0] is the pre-chain state, so a run of N steps
// produces N+1 entries. The history is append-only.
type ScoreData struct {
	Names     []string         `json:"names" bson:"names"`
	Steps     []map[string]any `json:"steps" bson:"steps"`
	SelfLoops int              `json:"self_loops" bson:"self_loops"`
}

// Run executes a chain to completion and collects the full score history.
//
// It snapshots the initial partition (step 0, no proposal), then drains the
// lazy driver, appending one snapshot per completed step. The OnStep
// callback, when configured, fires after each completed step. On a fatal
// error the partial history collected so far is returned alongside it.
func Run(cfg Config) (*ScoreData, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(c.cfg.Scores))
	for i, s := range c.cfg.Scores {
		names[i] = s.Name()
	}

	data := &ScoreData{
		Names: names,
		Steps: make([]map[string]any, 0, cfg.Steps+1),
	}
	data.Steps = append(data.Steps, c.initialScores())

	for c.Next() {
		step := c.Step()
		data.Steps = append(data.Steps, step.Scores)
		if step.SelfLoop {
			data.SelfLoops++
		}
		if cfg.OnStep != nil {
			cfg.OnStep(step.Index, cfg.Steps)
		}
	}

	return data, c.Err()
}
