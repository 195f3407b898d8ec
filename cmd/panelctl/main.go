// Command panelctl holds operator tasks that cannot go through the panel:
// bootstrapping the first admin role and poking the job queue.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/reprimand-panel/reprimand-panel/cmd/panelctl/cli"
	"github.com/reprimand-panel/reprimand-panel/internal/app"
	"github.com/reprimand-panel/reprimand-panel/internal/identity/discord"
	"github.com/reprimand-panel/reprimand-panel/internal/platform/db"
	"github.com/reprimand-panel/reprimand-panel/internal/rbac"
	"github.com/reprimand-panel/reprimand-panel/internal/roles"
)

const usage = `usage: panelctl <command> [flags]

commands:
  grant-admin --role ID [--skip-sync] [--json]   grant every permission to a guild role
  jobs trigger NAME                              enqueue a job (roles:sync)
  jobs stats                                     show the default queue
  jobs archived [--size N]                       list side effects that ran out of retries
`

func main() {
	if app.InTestMode() {
		return
	}
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	switch os.Args[1] {
	case "grant-admin":
		os.Exit(runGrantAdmin(ctx, cfg, os.Args[2:]))
	case "jobs":
		os.Exit(runJobs(ctx, cfg, os.Args[2:]))
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func runGrantAdmin(ctx context.Context, cfg *app.Config, args []string) int {
	fs := flag.NewFlagSet("grant-admin", flag.ContinueOnError)
	roleID := fs.String("role", "", "guild role id")
	skipSync := fs.Bool("skip-sync", false, "grant without syncing guild roles first")
	jsonOut := fs.Bool("json", false, "print a JSON summary")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "grant-admin: %v\n", err)
		return 1
	}
	defer pool.Close()

	var syncer cli.RoleSyncer
	if !*skipSync {
		guild, err := discord.New(cfg.DiscordBotToken, cfg.DiscordGuildID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "grant-admin: %v\n", err)
			return 1
		}
		syncer = roles.NewService(roles.NewRepository(pool), guild)
	}
	admin := cli.NewAdminCLI(syncer, rbac.NewService(rbac.NewRepository(pool), nil))
	return admin.GrantAdminCommand(ctx, cli.GrantAdminOptions{RoleID: *roleID, SkipSync: *skipSync, JSONOutput: *jsonOut})
}

func runJobs(ctx context.Context, cfg *app.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}
	jobsCLI := cli.NewJobsCLI(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer func() { _ = jobsCLI.Close() }()

	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "jobs trigger: job name required")
			return 1
		}
		info, err := jobsCLI.Trigger(ctx, args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs trigger: %v\n", err)
			return 1
		}
		fmt.Printf("enqueued %s (%s)\n", info.Type, info.ID)
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs stats: %v\n", err)
			return 1
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived)
	case "archived":
		fs := flag.NewFlagSet("jobs archived", flag.ContinueOnError)
		size := fs.Int("size", 10, "page size")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		tasks, err := jobsCLI.ListArchived(ctx, *size)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jobs archived: %v\n", err)
			return 1
		}
		for _, task := range tasks {
			fmt.Printf("%s\t%s\t%s\n", task.ID, task.Type, task.LastErr)
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		return 1
	}
	return 0
}
