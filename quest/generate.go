package quest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fieldops/handler/oracle"
)

// questContextModules is how many top-ranked modules are handed to the
// oracle as composition context.
const questContextModules = 16

// GenerateQuest composes a quest from the best available modules. The
// oracle does the authoring; this side selects context and fills in the
// fields the oracle tends to omit.
func (s *Service) GenerateQuest(ctx context.Context, in QuestInput) (map[string]any, error) {
	if in.Inputs == nil {
		in.Inputs = map[string]any{}
	}
	if in.AvoidTitles == nil {
		in.AvoidTitles = []string{}
	}

	rows, err := s.store.ListModules(ctx, questContextModules)
	if err != nil {
		return nil, err
	}
	modules := make([]*ModuleView, 0, len(rows))
	for _, m := range rows {
		modules = append(modules, decodeModule(m))
	}

	contextJSON, err := json.Marshal(map[string]any{
		"inputs":       in.Inputs,
		"avoid_titles": in.AvoidTitles,
		"modules":      modules,
	})
	if err != nil {
		return nil, fmt.Errorf("encode quest context: %w", err)
	}

	quest, err := s.oracle.CompleteJSON(ctx, oracle.QuestPrompt(string(contextJSON)))
	if err != nil {
		return nil, err
	}

	if id, ok := quest["id"].(string); !ok || id == "" {
		quest["id"] = s.newID()
	}
	if created, ok := quest["created_at"].(string); !ok || created == "" {
		quest["created_at"] = s.now()
	}
	if status, ok := quest["status"].(string); !ok || status == "" {
		quest["status"] = "proposed"
	}
	if _, ok := quest["inputs"]; !ok {
		quest["inputs"] = in.Inputs
	}

	s.logEvent(ctx, "quest_generated", "quest", fmt.Sprint(quest["id"]), "generate", true)
	s.logger.Info("quest generated", "quest_id", quest["id"], "context_modules", len(modules))
	return quest, nil
}
