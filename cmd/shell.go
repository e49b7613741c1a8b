package cmd

import (
	"bufio"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/cs-logstats/internal/model"
	"github.com/pable/cs-logstats/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	cGreeting.Println("cslogstats shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("cslogstats")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			shellList(db)
		case "show":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: show <hash-prefix> [--player <name>]")
				continue
			}
			var focus string
			for i := 1; i+1 < len(args); i++ {
				if args[i] == "--player" {
					focus = args[i+1]
				}
			}
			shellShow(db, args[0], focus)
		case "report":
			if len(args) != 2 {
				cError.Fprintf(os.Stderr, "usage: report <hash-prefix> <%s>\n", strings.Join(model.ReportKinds(), "|"))
				continue
			}
			shellReport(db, args[0], args[1])
		case "player":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: player <name>")
				continue
			}
			// Player names may contain spaces.
			if err := printPlayers(db, []string{strings.Join(args, " ")}); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			}
		case "trend":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: trend <name>")
				continue
			}
			if err := printTrend(db, strings.Join(args, " ")); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			}
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q — type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list all stored logs"},
		{"show <hash-prefix>", "show a log's report tables"},
		{"show <hash-prefix> --player <name>", "same, highlighting one player"},
		{"report <hash-prefix> <kind>", "print one stored report as JSON"},
		{"player <name>", "one player's totals across stored logs"},
		{"trend <name>", "one player's logs, oldest first"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellList(db *storage.DB) {
	logs, err := db.ListLogs()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(logs) == 0 {
		cMuted.Println("No logs stored yet.")
		return
	}
	cHeader.Fprintf(os.Stdout, "%-14s  %-12s  %-20s  %6s  %s\n",
		"HASH", "MAP", "PARSED", "SCORE", "SOURCE")
	cMuted.Fprintf(os.Stdout, "%-14s  %-12s  %-20s  %6s  %s\n",
		"──────────────", "────────────", "────────────────────", "──────", "──────")
	for _, l := range logs {
		fmt.Fprintf(os.Stdout, "%-14s  %-12s  %-20s  %6s  %s\n",
			l.Hash[:12], orDash(l.MapName), l.ParsedAt, l.FinalScore(), l.Source)
	}
}

func shellShow(db *storage.DB, prefix, focus string) {
	found, err := showByPrefix(db, prefix, focus)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if !found {
		cWarn.Fprintf(os.Stderr, "no log found with prefix %q\n", prefix)
	}
}

func shellReport(db *storage.DB, prefix, kind string) {
	if !slices.Contains(model.ReportKinds(), kind) {
		cWarn.Fprintf(os.Stderr, "unknown report %q\n", kind)
		return
	}
	log, err := db.GetLogByPrefix(prefix)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if log == nil {
		cWarn.Fprintf(os.Stderr, "no log found with prefix %q\n", prefix)
		return
	}
	body, err := db.GetReport(log.Hash, kind)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if body == nil {
		cMuted.Println("(not stored)")
		return
	}
	data, err := encodeReport(body, "json")
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	os.Stdout.Write(data)
}
