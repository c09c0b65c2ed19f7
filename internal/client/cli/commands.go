package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/weddingportal/internal/models"
)

var errUsage = errors.New("usage")

func usage(s string) error {
	return fmt.Errorf("%w: %s", errUsage, s)
}

func (a *App) Join(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		name = a.config.UserName
	}
	if name == "" {
		return usage("join <name>")
	}
	return a.portal.Join(ctx, name, a.config.Role)
}

func (a *App) Message(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("msg <text>")
	}
	return a.portal.SendMessage(ctx, strings.Join(args, " "))
}

func (a *App) Sticker(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("sticker <key>")
	}
	return a.portal.SendSticker(ctx, args[0])
}

func (a *App) Heart(ctx context.Context) error {
	return a.portal.AddHeart(ctx)
}

func (a *App) Lantern(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("lantern <wish>")
	}
	return a.portal.ReleaseLantern(ctx, strings.Join(args, " "))
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("upload <url> [caption]")
	}
	return a.portal.UploadMedia(ctx, args[0], strings.Join(args[1:], " "))
}

func (a *App) Caption(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage("caption <id> <text>")
	}
	return a.portal.EditCaption(ctx, args[0], strings.Join(args[1:], " "))
}

func (a *App) DeleteMedia(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delmedia <id>")
	}
	return a.portal.DeleteMedia(ctx, args[0])
}

func (a *App) DeleteMessage(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delmsg <id>")
	}
	return a.portal.DeleteMessage(ctx, args[0])
}

func (a *App) RSVP(ctx context.Context) error {
	return a.portal.RSVP(ctx)
}

func (a *App) Block(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("block <name>")
	}
	return a.portal.Block(ctx, strings.Join(args, " "))
}

func (a *App) Theme(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("theme <gradient> <effect>")
	}
	return a.portal.UpdateTheme(ctx, models.ThemeConfig{Gradient: args[0], Effect: args[1]})
}

func (a *App) Config(ctx context.Context, args []string) error {
	patch, err := parseConfigPatch(args)
	if err != nil {
		return err
	}
	return a.portal.UpdateConfig(ctx, patch)
}

// parseConfigPatch reads key=value pairs. Tokens without '=' continue the
// previous value, so values may contain spaces.
func parseConfigPatch(args []string) (models.ConfigPatch, error) {
	var patch models.ConfigPatch
	if len(args) == 0 {
		return patch, usage("config key=value...")
	}

	var current *string
	for _, tok := range args {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			if current == nil {
				return patch, usage("config key=value...")
			}
			*current += " " + tok
			continue
		}

		v := value
		switch key {
		case "coupleName":
			patch.CoupleName = &v
		case "date":
			patch.Date = &v
		case "welcomeMsg":
			patch.WelcomeMsg = &v
		case "coupleImage":
			patch.CoupleImage = &v
		default:
			return patch, fmt.Errorf("unknown config key %q", key)
		}
		current = &v
	}
	return patch, nil
}

func (a *App) Song(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("song <name> [play|pause]")
	}

	playing := true
	switch args[len(args)-1] {
	case "play":
		args = args[:len(args)-1]
	case "pause":
		playing = false
		args = args[:len(args)-1]
	}
	if len(args) == 0 {
		return usage("song <name> [play|pause]")
	}

	return a.portal.UpdatePlayback(ctx, models.PlaybackState{
		CurrentSong: strings.Join(args, " "),
		IsPlaying:   playing,
	})
}

func (a *App) Announce(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("announce <text>")
	}
	return a.portal.Announce(ctx, strings.Join(args, " "))
}

func (a *App) Typing(ctx context.Context, args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return usage("typing on|off")
	}
	return a.portal.SetTyping(ctx, args[0] == "on")
}

func (a *App) Where(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("where <lat> <lng>")
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("bad latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("bad longitude: %w", err)
	}
	return a.portal.UpdateLocation(ctx, lat, lng)
}

func (a *App) Sync(ctx context.Context) error {
	return a.portal.RequestSync(ctx)
}
