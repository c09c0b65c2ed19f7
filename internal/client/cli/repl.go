package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/weddingportal/internal/common"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. The real App satisfies
// it; tests use a stub.
type execIface interface {
	Join(ctx context.Context, args []string) error
	Message(ctx context.Context, args []string) error
	Sticker(ctx context.Context, args []string) error
	Heart(ctx context.Context) error
	Lantern(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Caption(ctx context.Context, args []string) error
	DeleteMedia(ctx context.Context, args []string) error
	DeleteMessage(ctx context.Context, args []string) error
	RSVP(ctx context.Context) error
	Block(ctx context.Context, args []string) error
	Theme(ctx context.Context, args []string) error
	Config(ctx context.Context, args []string) error
	Song(ctx context.Context, args []string) error
	Announce(ctx context.Context, args []string) error
	Typing(ctx context.Context, args []string) error
	Where(ctx context.Context, args []string) error
	Show(ctx context.Context) error
	Sync(ctx context.Context) error
}

const helpText = `Commands:
  join [name]                 join the portal
  msg <text>                  send a chat message
  sticker <key>               send a sticker
  heart                       send a heart
  lantern <wish>              release a sky lantern
  upload <url> [caption]      add a photo or video
  caption <id> <text>         edit a media caption
  delmedia <id>               delete a media item
  delmsg <id>                 delete a chat message
  rsvp                        confirm attendance
  block <name>                remove a guest
  theme <gradient> <effect>   change the theme
  config key=value...         edit coupleName, date, welcomeMsg, coupleImage
  song <name> [play|pause]    set the playlist
  announce <text>             broadcast an announcement
  typing on|off               report typing
  where <lat> <lng>           share location
  show                        print the shared state
  sync                        request a full sync
  exit | quit                 leave`

// runREPL reads commands line by line and dispatches them to a. It returns
// on scanner EOF, on "exit"/"quit", or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("portal %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "join":
			err = a.Join(ctx, args)
		case "msg":
			err = a.Message(ctx, args)
		case "sticker":
			err = a.Sticker(ctx, args)
		case "heart":
			err = a.Heart(ctx)
		case "lantern":
			err = a.Lantern(ctx, args)
		case "upload":
			err = a.Upload(ctx, args)
		case "caption":
			err = a.Caption(ctx, args)
		case "delmedia":
			err = a.DeleteMedia(ctx, args)
		case "delmsg":
			err = a.DeleteMessage(ctx, args)
		case "rsvp":
			err = a.RSVP(ctx)
		case "block":
			err = a.Block(ctx, args)
		case "theme":
			err = a.Theme(ctx, args)
		case "config":
			err = a.Config(ctx, args)
		case "song":
			err = a.Song(ctx, args)
		case "announce":
			err = a.Announce(ctx, args)
		case "typing":
			err = a.Typing(ctx, args)
		case "where":
			err = a.Where(ctx, args)
		case "show":
			err = a.Show(ctx)
		case "sync":
			err = a.Sync(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		report(err)
	}
}

// report prints the outcome of a command. Offline intents are still applied
// locally, so that case is not an error for the user.
func report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, common.ErrNotConnected):
		printlnFn("offline: applied locally, the next sync will reconcile")
	default:
		printlnFn("error:", err)
	}
}
