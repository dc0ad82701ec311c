package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent/tools"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/bridge"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive diagnostic chat session",
	Long: `Start an interactive chat session with the diagnostic agent.

The agent answers questions about your Home Assistant system by calling
diagnostic tools and explaining the results. In demo mode (the default)
it works against bundled sample data; configure live mode to talk to a
real Home Assistant diagnostics server.

Slash commands inside the session:
  /reset              start a fresh conversation
  /report             run the full diagnostic suite
  /tools              list the available tools
  /mode demo          switch to demo data
  /mode live <url>    switch to a live server
  /help               show this list

Examples:
  # Chat against demo data
  hada chat

  # Chat against a live server
  HADA_MODE=live HADA_HA_URL=http://homeassistant.local:8086/mcp hada chat`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	toolStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		cancel()
	}()

	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	session := &chatSession{}
	session.registry, session.agent = rt.rebuild(rt.manager.Current())

	fmt.Println(bannerStyle.Render("Home Assistant Diagnostics Agent"))
	fmt.Printf("Mode: %s | Tools: %d | Type /help for commands, exit to quit\n\n",
		rt.manager.State().Mode, len(session.registry.Names()))
	if rt.cfg.GeminiAPIKey == "" {
		fmt.Println(warnStyle.Render("No primary model configured; set HADA_GEMINI_API_KEY for full diagnostics."))
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print(promptStyle.Render("you> "))
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		}

		if strings.HasPrefix(line, "/") {
			handleSlashCommand(ctx, rt, session, line)
			continue
		}

		result := session.agent.Chat(ctx, line)

		for _, rec := range result.ToolsUsed {
			fmt.Println(toolStyle.Render(fmt.Sprintf("  [tool] %s", rec.Name)))
		}
		if result.FallbackUsed {
			fmt.Println(warnStyle.Render("  (answered by fallback narrator)"))
		}
		printMarkdown(renderer, result.Text)
	}
	return scanner.Err()
}

// chatSession holds the registry and agent for the current backend. A
// /mode switch replaces both.
type chatSession struct {
	registry *tools.Registry
	agent    *agent.Agent
}

func handleSlashCommand(ctx context.Context, rt *runtime, session *chatSession, line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/help":
		fmt.Println("Commands: /reset /report /tools /mode demo | /mode live <url> [token]")
	case "/reset":
		session.agent.Reset()
		fmt.Println("Conversation reset.")
	case "/report":
		report := bridge.RunFullDiagnostics(ctx, rt.manager.Current())
		printJSON(report)
	case "/tools":
		for _, name := range session.registry.Names() {
			fmt.Println("  " + name)
		}
	case "/mode":
		if len(fields) < 2 {
			fmt.Println(warnStyle.Render("Usage: /mode demo | /mode live <url> [token]"))
			return
		}
		mode := fields[1]
		url, token := "", ""
		if len(fields) > 2 {
			url = fields[2]
		}
		if len(fields) > 3 {
			token = fields[3]
		}
		if err := rt.manager.Configure(ctx, mode, url, token); err != nil {
			fmt.Println(warnStyle.Render("Mode switch failed: " + err.Error()))
			return
		}
		session.registry, session.agent = rt.rebuild(rt.manager.Current())
		st := rt.manager.State()
		fmt.Printf("Switched to %s mode (connected: %v)\n", st.Mode, st.Connected)
	default:
		fmt.Println(warnStyle.Render("Unknown command. Type /help for the list."))
	}
}

func printMarkdown(renderer *glamour.TermRenderer, text string) {
	rendered, err := renderer.Render(text)
	if err != nil {
		fmt.Println(text)
		return
	}
	fmt.Println(strings.TrimRight(rendered, "\n"))
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(data))
}
