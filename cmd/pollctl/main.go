// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kasiabeben10/poll-app/auth"
	"github.com/kasiabeben10/poll-app/client"
	"github.com/kasiabeben10/poll-app/ledger"
	"github.com/kasiabeben10/poll-app/models"
)

const usage = `Usage: pollctl [--server URL] [--keypair PATH] <command> [args]

Commands:
  keygen [--force]                                   Create a keypair file
  init-user                                          Register your identity
  create-poll [--duration D] <question> <option>...  Create a poll (D: seconds or 1h30m, 0 never closes)
  vote <poll> <option-index>                         Vote on a poll
  view-poll <poll>                                   Show a poll
  results <poll>                                     Show tallies
  get-winner <poll>                                  Show the winning options
  my-polls                                           List your polls

<poll> is a poll address, or the index of one of your own polls.
The server defaults to $POLL_SERVER, then ` + client.DefaultServer + `.
`

type cli struct {
	stdout  io.Writer
	stderr  io.Writer
	server  string
	keypair string
	now     func() time.Time
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr, now: time.Now}

	fs := flag.NewFlagSet("pollctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	fs.StringVar(&c.server, "server", envOr("POLL_SERVER", client.DefaultServer), "API server URL")
	fs.StringVar(&c.keypair, "keypair", "", "Keypair file (default: ~/.config/poll-app/id.json)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	if c.keypair == "" {
		path, err := client.DefaultKeypairPath()
		if err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return 1
		}
		c.keypair = path
	}

	commands := map[string]func(context.Context, []string) error{
		"keygen":      c.keygen,
		"init-user":   c.initUser,
		"create-poll": c.createPoll,
		"vote":        c.vote,
		"view-poll":   c.viewPoll,
		"results":     c.results,
		"get-winner":  c.getWinner,
		"my-polls":    c.myPolls,
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command %q\n\n%s", name, usage)
		return 2
	}

	if err := cmd(ctx, rest); err != nil {
		var usageErr usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "Error: %v\n\n%s", err, usage)
			return 2
		}
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

type usageError string

func (e usageError) Error() string { return string(e) }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// signedClient loads the keypair and returns a client that signs with it
func (c *cli) signedClient() (*client.Client, auth.Keypair, error) {
	kp, err := client.LoadKeypair(c.keypair)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, auth.Keypair{}, fmt.Errorf("no keypair at %s, run pollctl keygen first", c.keypair)
		}
		return nil, auth.Keypair{}, err
	}
	return client.New(c.server, client.WithKeypair(kp), client.WithClock(c.now)), kp, nil
}

// resolvePoll accepts a poll address, or an index into the caller's polls
func (c *cli) resolvePoll(ctx context.Context, arg string) (*client.Client, ledger.Address, error) {
	if index, err := strconv.ParseUint(arg, 10, 32); err == nil {
		api, kp, err := c.signedClient()
		if err != nil {
			return nil, ledger.Address{}, err
		}
		p, err := api.PollByIndex(ctx, kp.Public, uint32(index))
		if err != nil {
			return nil, ledger.Address{}, err
		}
		return api, p.Address, nil
	}

	addr, err := ledger.ParseAddress(arg)
	if err != nil {
		return nil, ledger.Address{}, usageError(fmt.Sprintf("poll %q is neither an address nor an index", arg))
	}
	api, _, err := c.signedClient()
	if err != nil {
		// Reads work without a keypair
		api = client.New(c.server, client.WithClock(c.now))
	}
	return api, addr, nil
}

func (c *cli) keygen(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	force := fs.Bool("force", false, "Replace an existing keypair")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}

	kp, err := auth.GenerateKeypair()
	if err != nil {
		return err
	}
	if err := client.SaveKeypair(c.keypair, kp, *force); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("keypair %s already exists (use --force to replace it)", c.keypair)
		}
		return err
	}

	fmt.Fprintf(c.stdout, "Wrote keypair to %s\nIdentity: %s\n", c.keypair, kp.Public)
	return nil
}

func (c *cli) initUser(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usageError("init-user takes no arguments")
	}
	api, _, err := c.signedClient()
	if err != nil {
		return err
	}

	reg, err := api.Register(ctx)
	if err != nil {
		return err
	}
	if reg.Created {
		fmt.Fprintf(c.stdout, "Registered %s\nRegistry: %s\n", reg.Owner, reg.Address)
	} else {
		fmt.Fprintf(c.stdout, "Already registered %s with %s\n", reg.Owner, pluralize(uint64(reg.PollCount), "poll"))
	}
	return nil
}

func (c *cli) createPoll(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-poll", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	durationFlag := fs.String("duration", "0", "Seconds or a duration like 1h30m; 0 never closes")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if fs.NArg() < 1 {
		return usageError("create-poll needs a question and options")
	}
	duration, err := parseDuration(*durationFlag)
	if err != nil {
		return usageError(err.Error())
	}

	api, _, err := c.signedClient()
	if err != nil {
		return err
	}
	created, err := api.CreatePoll(ctx, fs.Arg(0), fs.Args()[1:], duration)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "Created poll #%d at %s\n", created.Index, created.Address)
	c.printPoll(created.Poll)
	return nil
}

func (c *cli) vote(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("vote needs a poll and an option index")
	}
	option, err := strconv.Atoi(args[1])
	if err != nil {
		return usageError(fmt.Sprintf("option index %q is not a number", args[1]))
	}
	api, addr, err := c.resolvePoll(ctx, args[0])
	if err != nil {
		return err
	}

	resp, err := api.Vote(ctx, addr, option)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Voted for %q (%s now)\n", resp.Option, pluralize(uint64(resp.Votes), "vote"))
	return nil
}

func (c *cli) viewPoll(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("view-poll needs a poll")
	}
	api, addr, err := c.resolvePoll(ctx, args[0])
	if err != nil {
		return err
	}

	p, err := api.Poll(ctx, addr)
	if err != nil {
		return err
	}
	c.printPoll(p)
	return nil
}

func (c *cli) results(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("results needs a poll")
	}
	api, addr, err := c.resolvePoll(ctx, args[0])
	if err != nil {
		return err
	}

	res, err := api.Results(ctx, addr)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "Question: %s\n", res.Question)
	for i, o := range res.Options {
		share := 0.0
		if res.TotalVotes > 0 {
			share = 100 * float64(o.Votes) / float64(res.TotalVotes)
		}
		fmt.Fprintf(c.stdout, "%d: %s - %s (%s%%)\n", i, o.Option, pluralize(uint64(o.Votes), "vote"), humanize.FtoaWithDigits(share, 1))
	}
	fmt.Fprintf(c.stdout, "Total: %s\n", pluralize(uint64(res.TotalVotes), "vote"))
	return nil
}

func (c *cli) getWinner(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("get-winner needs a poll")
	}
	api, addr, err := c.resolvePoll(ctx, args[0])
	if err != nil {
		return err
	}

	win, err := api.Winner(ctx, addr)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "Winning options (%s):\n", pluralize(uint64(win.MaxVotes), "vote"))
	for _, o := range win.WinningOptions {
		fmt.Fprintf(c.stdout, "- %s\n", o)
	}
	return nil
}

func (c *cli) myPolls(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return usageError("my-polls takes no arguments")
	}
	api, kp, err := c.signedClient()
	if err != nil {
		return err
	}

	list, err := api.ListPolls(ctx, kp.Public)
	if err != nil {
		return err
	}
	if len(list.Polls) == 0 {
		fmt.Fprintln(c.stdout, "No polls yet")
		return nil
	}

	for _, entry := range list.Polls {
		p, err := api.Poll(ctx, entry.Address)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "#%d %s %q [%s, %s]\n", entry.Index, entry.Address, p.Question, p.Status, pluralize(uint64(p.VoterCount), "vote"))
	}
	return nil
}

func (c *cli) printPoll(p models.Poll) {
	now := c.now()

	fmt.Fprintf(c.stdout, "Question: %s\n", p.Question)
	for i, option := range p.Options {
		fmt.Fprintf(c.stdout, "%d: %s - %s\n", i, option, pluralize(uint64(p.Votes[i]), "vote"))
	}
	fmt.Fprintf(c.stdout, "Total voters: %s of %s\n", humanize.Comma(int64(p.VoterCount)), humanize.Comma(int64(p.MaxVoters)))
	fmt.Fprintf(c.stdout, "Created: %s\n", humanize.RelTime(p.CreatedAt, now, "ago", "from now"))

	switch {
	case p.ClosesAt == nil:
		fmt.Fprintf(c.stdout, "Status: %s, never closes\n", p.Status)
	case p.Status == models.StatusOpen:
		fmt.Fprintf(c.stdout, "Status: %s, closes %s\n", p.Status, humanize.RelTime(*p.ClosesAt, now, "ago", "from now"))
	default:
		fmt.Fprintf(c.stdout, "Status: %s %s\n", p.Status, humanize.RelTime(*p.ClosesAt, now, "ago", "from now"))
	}
}

// parseDuration reads whole seconds ("90") or a Go duration ("1h30m")
func parseDuration(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d%time.Second != 0 {
		return 0, fmt.Errorf("duration %q is not whole seconds", s)
	}
	return int64(d / time.Second), nil
}

func pluralize(n uint64, word string) string {
	if n != 1 {
		word += "s"
	}
	return humanize.Comma(int64(n)) + " " + word
}
