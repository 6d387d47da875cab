package wizard

import (
	"context"

	"github.com/iddaa-lens/laundry/pkg/connectors"
	"github.com/iddaa-lens/laundry/pkg/models"
	"github.com/iddaa-lens/laundry/pkg/utils"
)

const invalidAnswer = "That's not a valid answer. Try again?"

// EnterFields asks for every setting in declared order and stores the accepted
// answers on instance. A rejected answer re-asks the same field until the user
// gives an acceptable one; only a prompt error or a cancelled ctx stops the loop.
func EnterFields(ctx context.Context, p Prompter, job *models.Job, instance *models.ConnectorInstance, settings []connectors.Setting) error {
	if instance.Settings == nil {
		instance.Settings = models.Settings{}
	}

	for _, setting := range settings {
		entry := connectors.Entry{Required: true, Prompt: setting.Prompt}
		if setting.Before != nil {
			var err error
			entry, err = setting.Before(ctx, job, instance, setting.Prompt)
			if err != nil {
				return err
			}
		}
		if !entry.Required {
			continue
		}

		if err := enterField(ctx, p, job, instance, setting, entry); err != nil {
			return err
		}
	}
	return nil
}

func enterField(ctx context.Context, p Prompter, job *models.Job, instance *models.ConnectorInstance, setting connectors.Setting, entry connectors.Entry) error {
	prompt := entry.Prompt
	if prompt == "" {
		prompt = setting.Prompt
	}
	def := entry.Suggest
	if def == "" {
		def = instance.Settings.String(setting.Name)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := p.Ask(prompt, def)
		if err != nil {
			return err
		}
		answer := utils.CleanString(raw)

		var value any = answer
		if setting.After != nil {
			rewritten, err := setting.After(ctx, job, instance.Settings[setting.Name], answer)
			if err != nil {
				p.Say(invalidAnswer)
				continue
			}
			if rewritten != nil {
				value = rewritten
			}
		}

		if s, ok := value.(string); ok && s == "" {
			delete(instance.Settings, setting.Name)
		} else {
			instance.Settings[setting.Name] = value
		}
		return nil
	}
}
