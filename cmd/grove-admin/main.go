// ABOUTME: Command-line admin tool for the grove-ledger server
// ABOUTME: Manages users, relationships, forests, milestones, completions, and tokens over the HTTP API

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
)

const banner = `
                                                    _             _
  __ _  _ __   ___  __   __  ___         __ _   __| | _ __ ___  (_) _ __
 / _' || '__| / _ \ \ \ / / / _ \ _____  / _' | / _' || '_ ' _ \ | || '_ \
| (_| || |   | (_) | \ V / |  __/|_____|| (_| || (_| || | | | | || || | | |
 \__, ||_|    \___/   \_/   \___|        \__,_| \__,_||_| |_| |_||_||_| |_|
 |___/
`

func printUsage() {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	fmt.Println()

	yellow := color.New(color.FgYellow)

	yellow.Println("Usage:")
	fmt.Println("  grove-admin <command> [arguments]")
	fmt.Println()

	yellow.Println("Commands:")
	fmt.Println("  me                                     Show your identity")
	fmt.Println("  status                                 Check server status")
	fmt.Println("  register --name NAME --role ROLE       Register yourself")
	fmt.Println("  user <id>                              Show a user")
	fmt.Println("  link --subject ID --kind KIND          Create a relationship to a child")
	fmt.Println("  links <user-id>                        List a user's relationships")
	fmt.Println("  forests                                List forests")
	fmt.Println("  forest create --name NAME [--desc D]   Create a forest")
	fmt.Println("  forest <id>                            Show a forest")
	fmt.Println("  milestones <forest-id>                 List milestones in a forest")
	fmt.Println("  milestone <id>                         Show a milestone")
	fmt.Println("  milestone create [flags]               Create a milestone")
	fmt.Println("  prereq add <milestone> <required>      Add a prerequisite edge")
	fmt.Println("  prereq list <milestone>                List prerequisites")
	fmt.Println("  complete --milestone ID --learner ID   Record a completion for a learner")
	fmt.Println("  complete self --milestone ID           Record your own completion")
	fmt.Println("  completions <learner-id>               List a learner's completions")
	fmt.Println("  audit [--action A] [--limit N]         Show the audit log (admin)")
	fmt.Println("  token create --user ID [--ttl DUR]     Mint a token for a user (admin)")
	fmt.Println()

	yellow.Println("Environment:")
	fmt.Println("  GROVE_LEDGER_URL   Server base URL (default: http://localhost:8080)")
	fmt.Println("  GROVE_TOKEN        Bearer token (default: read from config dir)")
	fmt.Println()

	yellow.Println("Examples:")
	fmt.Println("  grove-admin register --name \"Maria\" --role educator")
	fmt.Println("  grove-admin link --subject child-uuid --kind educator-child")
	fmt.Println("  grove-admin milestone create --forest 1 --title \"Counting to 10\" --difficulty 1")
	fmt.Println("  grove-admin complete --milestone 4 --learner child-uuid")
	fmt.Println("  grove-admin token create --user child-uuid --ttl 720h")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := newClient()

	var err error
	switch os.Args[1] {
	case "me":
		err = cmdMe(ctx, client)
	case "status":
		err = cmdStatus(ctx, client)
	case "register":
		err = cmdRegister(ctx, client, os.Args[2:])
	case "user":
		err = cmdUser(ctx, client, os.Args[2:])
	case "link":
		err = cmdLink(ctx, client, os.Args[2:])
	case "links":
		err = cmdLinks(ctx, client, os.Args[2:])
	case "forests":
		err = cmdForests(ctx, client)
	case "forest":
		err = cmdForest(ctx, client, os.Args[2:])
	case "milestones":
		err = cmdMilestones(ctx, client, os.Args[2:])
	case "milestone":
		err = cmdMilestone(ctx, client, os.Args[2:])
	case "prereq":
		err = cmdPrereq(ctx, client, os.Args[2:])
	case "complete":
		err = cmdComplete(ctx, client, os.Args[2:])
	case "completions":
		err = cmdCompletions(ctx, client, os.Args[2:])
	case "audit":
		err = cmdAudit(ctx, client, os.Args[2:])
	case "token":
		err = cmdToken(ctx, client, os.Args[2:])
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

// --- HTTP client ---

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newClient() *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(getEnv("GROVE_LEDGER_URL", "http://localhost:8080"), "/"),
		token:   getToken(),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// apiError is the server's error envelope.
type apiError struct {
	Message string `json:"error"`
	Code    string `json:"code"`
}

func (e *apiError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
			return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
		}
		return &apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func (c *apiClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *apiClient) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// --- Wire types ---

type user struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         int    `json:"role"`
	RoleName     string `json:"role_name"`
	RegisteredAt uint64 `json:"registered_at"`
}

type relationship struct {
	ManagerID string `json:"manager_id"`
	SubjectID string `json:"subject_id"`
	Kind      string `json:"kind"`
	CreatedAt uint64 `json:"created_at"`
}

type forest struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   uint64 `json:"created_at"`
}

type milestone struct {
	ID          uint64  `json:"id"`
	ForestID    uint64  `json:"forest_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Difficulty  int     `json:"difficulty"`
	ParentID    *uint64 `json:"parent_milestone_id,omitempty"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   uint64  `json:"created_at"`
}

type prerequisite struct {
	MilestoneID    uint64 `json:"milestone_id"`
	PrerequisiteID uint64 `json:"prerequisite_id"`
	AddedAt        uint64 `json:"added_at"`
}

type completion struct {
	MilestoneID uint64 `json:"milestone_id"`
	LearnerID   string `json:"learner_id"`
	CompletedAt uint64 `json:"completed_at"`
	VerifiedBy  string `json:"verified_by"`
	EvidenceURL string `json:"evidence_url,omitempty"`
}

type auditEntry struct {
	ID         string         `json:"id"`
	At         uint64         `json:"at"`
	ActorID    string         `json:"actor_id"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   string         `json:"target_id"`
	Detail     map[string]any `json:"detail,omitempty"`
}

// --- Commands ---

func cmdMe(ctx context.Context, client *apiClient) error {
	var me user
	if err := client.get(ctx, "/v1/me", &me); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Println("  Identity")
	cyan.Println("  --------")
	fmt.Printf("  ID:          %s\n", me.ID)
	fmt.Printf("  Name:        %s\n", me.Name)
	fmt.Printf("  Role:        %s\n", me.RoleName)
	fmt.Printf("  Registered:  %d\n", me.RegisteredAt)

	return nil
}

func cmdStatus(ctx context.Context, client *apiClient) error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	cyan.Print(banner)
	fmt.Println()

	fmt.Printf("  Server:  %s\n", client.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := client.http.Do(req)
	if err != nil {
		red.Println("  Health:  unreachable")
		return fmt.Errorf("connecting to %s: %w", client.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		green.Println("  Health:  ok")
	} else {
		red.Printf("  Health:  status %d\n", resp.StatusCode)
		return nil
	}

	var me user
	if err := client.get(ctx, "/v1/me", &me); err != nil {
		fmt.Printf("  Token:   %v\n", err)
		return nil
	}
	fmt.Printf("  Token:   %s (%s)\n", truncate(me.ID, 20), me.RoleName)

	return nil
}

func parseRole(s string) (int, error) {
	switch strings.ToLower(s) {
	case "admin":
		return 1, nil
	case "educator":
		return 2, nil
	case "parent":
		return 3, nil
	case "child":
		return 4, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid role %q (want admin, educator, parent, or child)", s)
	}
	return n, nil
}

func cmdRegister(ctx context.Context, client *apiClient, args []string) error {
	var name, roleArg string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--name", "-n":
			if i+1 >= len(args) {
				return fmt.Errorf("--name requires a value")
			}
			name = args[i+1]
			i++
		case "--role", "-r":
			if i+1 >= len(args) {
				return fmt.Errorf("--role requires a value")
			}
			roleArg = args[i+1]
			i++
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	if name == "" {
		return fmt.Errorf("--name is required")
	}
	if roleArg == "" {
		return fmt.Errorf("--role is required")
	}

	role, err := parseRole(roleArg)
	if err != nil {
		return err
	}

	var created user
	body := map[string]any{"name": name, "role": role}
	if err := client.post(ctx, "/v1/users", body, &created); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Registered %s\n", created.Name)
	fmt.Printf("  ID:    %s\n", created.ID)
	fmt.Printf("  Role:  %s\n", created.RoleName)

	return nil
}

func cmdUser(ctx context.Context, client *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: grove-admin user <id>")
	}

	var u user
	if err := client.get(ctx, "/v1/users/"+args[0], &u); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Println("  User")
	cyan.Println("  ----")
	fmt.Printf("  ID:          %s\n", u.ID)
	fmt.Printf("  Name:        %s\n", u.Name)
	fmt.Printf("  Role:        %s\n", u.RoleName)
	fmt.Printf("  Registered:  %d\n", u.RegisteredAt)

	return nil
}

func cmdLink(ctx context.Context, client *apiClient, args []string) error {
	var subjectID, kind string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--subject", "-s":
			if i+1 >= len(args) {
				return fmt.Errorf("--subject requires a value")
			}
			subjectID = args[i+1]
			i++
		case "--kind", "-k":
			if i+1 >= len(args) {
				return fmt.Errorf("--kind requires a value")
			}
			kind = args[i+1]
			i++
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	if subjectID == "" {
		return fmt.Errorf("--subject is required")
	}
	if kind == "" {
		return fmt.Errorf("--kind is required (parent-child or educator-child)")
	}

	var rel relationship
	body := map[string]any{"subject_id": subjectID, "kind": kind}
	if err := client.post(ctx, "/v1/relationships", body, &rel); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Println("✓ Relationship created")
	fmt.Printf("  Manager:  %s\n", rel.ManagerID)
	fmt.Printf("  Subject:  %s\n", rel.SubjectID)
	fmt.Printf("  Kind:     %s\n", rel.Kind)

	return nil
}

func cmdLinks(ctx context.Context, client *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: grove-admin links <user-id>")
	}

	var resp struct {
		Relationships []relationship `json:"relationships"`
	}
	if err := client.get(ctx, "/v1/users/"+args[0]+"/relationships", &resp); err != nil {
		return err
	}

	if len(resp.Relationships) == 0 {
		fmt.Println("No relationships found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MANAGER\tSUBJECT\tKIND\tCREATED")
	fmt.Fprintln(w, "-------\t-------\t----\t-------")
	for _, rel := range resp.Relationships {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			truncate(rel.ManagerID, 24),
			truncate(rel.SubjectID, 24),
			rel.Kind,
			rel.CreatedAt,
		)
	}
	return w.Flush()
}

func cmdForests(ctx context.Context, client *apiClient) error {
	var resp struct {
		Forests []forest `json:"forests"`
	}
	if err := client.get(ctx, "/v1/forests", &resp); err != nil {
		return err
	}

	if len(resp.Forests) == 0 {
		fmt.Println("No forests found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION\tCREATED BY")
	fmt.Fprintln(w, "--\t----\t-----------\t----------")
	for _, f := range resp.Forests {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			f.ID,
			truncate(f.Name, 24),
			truncate(f.Description, 40),
			truncate(f.CreatedBy, 20),
		)
	}
	return w.Flush()
}

func cmdForest(ctx context.Context, client *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: grove-admin forest <id> | forest create --name NAME")
	}

	if args[0] == "create" {
		return cmdForestCreate(ctx, client, args[1:])
	}

	var f forest
	if err := client.get(ctx, "/v1/forests/"+args[0], &f); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Println("  Forest")
	cyan.Println("  ------")
	fmt.Printf("  ID:           %d\n", f.ID)
	fmt.Printf("  Name:         %s\n", f.Name)
	if f.Description != "" {
		fmt.Printf("  Description:  %s\n", f.Description)
	}
	fmt.Printf("  Created by:   %s\n", f.CreatedBy)
	fmt.Printf("  Created at:   %d\n", f.CreatedAt)

	return nil
}

func cmdForestCreate(ctx context.Context, client *apiClient, args []string) error {
	var name, desc string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--name", "-n":
			if i+1 >= len(args) {
				return fmt.Errorf("--name requires a value")
			}
			name = args[i+1]
			i++
		case "--desc", "-d":
			if i+1 >= len(args) {
				return fmt.Errorf("--desc requires a value")
			}
			desc = args[i+1]
			i++
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	if name == "" {
		return fmt.Errorf("--name is required")
	}

	var f forest
	body := map[string]any{"name": name, "description": desc}
	if err := client.post(ctx, "/v1/forests", body, &f); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Created forest %q\n", f.Name)
	fmt.Printf("  ID: %d\n", f.ID)

	return nil
}

func cmdMilestones(ctx context.Context, client *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: grove-admin milestones <forest-id>")
	}

	var resp struct {
		Milestones []milestone `json:"milestones"`
	}
	if err := client.get(ctx, "/v1/forests/"+args[0]+"/milestones", &resp); err != nil {
		return err
	}

	if len(resp.Milestones) == 0 {
		fmt.Println("No milestones found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDIFFICULTY\tCATEGORY\tPARENT")
	fmt.Fprintln(w, "--\t-----\t----------\t--------\t------")
	for _, m := range resp.Milestones {
		parent := "-"
		if m.ParentID != nil {
			parent = strconv.FormatUint(*m.ParentID, 10)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			m.ID,
			truncate(m.Title, 32),
			m.Difficulty,
			truncate(m.Category, 16),
			parent,
		)
	}
	return w.Flush()
}

func cmdMilestone(ctx context.Context, client *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: grove-admin milestone <id> | milestone create [flags]")
	}

	if args[0] == "create" {
		return cmdMilestoneCreate(ctx, client, args[1:])
	}

	var m milestone
	if err := client.get(ctx, "/v1/milestones/"+args[0], &m); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Println("  Milestone")
	cyan.Println("  ---------")
	fmt.Printf("  ID:           %d\n", m.ID)
	fmt.Printf("  Forest:       %d\n", m.ForestID)
	fmt.Printf("  Title:        %s\n", m.Title)
	if m.Description != "" {
		fmt.Printf("  Description:  %s\n", m.Description)
	}
	if m.Category != "" {
		fmt.Printf("  Category:     %s\n", m.Category)
	}
	fmt.Printf("  Difficulty:   %d\n", m.Difficulty)
	if m.ParentID != nil {
		fmt.Printf("  Parent:       %d\n", *m.ParentID)
	}
	fmt.Printf("  Created by:   %s\n", m.CreatedBy)

	return nil
}

func cmdMilestoneCreate(ctx context.Context, client *apiClient, args []string) error {
	var title, desc, category, forestArg, difficultyArg, parentArg string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--title", "-t":
			if i+1 >= len(args) {
				return fmt.Errorf("--title requires a value")
			}
			title = args[i+1]
			i++
		case "--desc", "-d":
			if i+1 >= len(args) {
				return fmt.Errorf("--desc requires a value")
			}
			desc = args[i+1]
			i++
		case "--category", "-c":
			if i+1 >= len(args) {
				return fmt.Errorf("--category requires a value")
			}
			category = args[i+1]
			i++
		case "--forest", "-f":
			if i+1 >= len(args) {
				return fmt.Errorf("--forest requires a value")
			}
			forestArg = args[i+1]
			i++
		case "--difficulty":
			if i+1 >= len(args) {
				return fmt.Errorf("--difficulty requires a value")
			}
			difficultyArg = args[i+1]
			i++
		case "--parent", "-p":
			if i+1 >= len(args) {
				return fmt.Errorf("--parent requires a value")
			}
			parentArg = args[i+1]
			i++
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	if title == "" {
		return fmt.Errorf("--title is required")
	}
	if forestArg == "" {
		return fmt.Errorf("--forest is required")
	}
	if difficultyArg == "" {
		return fmt.Errorf("--difficulty is required (1-5)")
	}

	forestID, err := strconv.ParseUint(forestArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid forest id %q", forestArg)
	}
	difficulty, err := strconv.Atoi(difficultyArg)
	if err != nil {
		return fmt.Errorf("invalid difficulty %q", difficultyArg)
	}

	body := map[string]any{
		"title":       title,
		"description": desc,
		"category":    category,
		"forest_id":   forestID,
		"difficulty":  difficulty,
	}
	if parentArg != "" {
		parentID, err := strconv.ParseUint(parentArg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid parent id %q", parentArg)
		}
		body["parent_milestone_id"] = parentID
	}

	var m milestone
	if err := client.post(ctx, "/v1/milestones", body, &m); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Created milestone %q\n", m.Title)
	fmt.Printf("  ID:      %d\n", m.ID)
	fmt.Printf("  Forest:  %d\n", m.ForestID)

	return nil
}

func cmdPrereq(ctx context.Context, client *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: grove-admin prereq add|list <milestone-id> [required-id]")
	}

	switch args[0] {
	case "add":
		if len(args) < 3 {
			return fmt.Errorf("usage: grove-admin prereq add <milestone-id> <required-id>")
		}
		requiredID, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid prerequisite id %q", args[2])
		}

		var p prerequisite
		body := map[string]any{"prerequisite_id": requiredID}
		if err := client.post(ctx, "/v1/milestones/"+args[1]+"/prerequisites", body, &p); err != nil {
			return err
		}

		green := color.New(color.FgGreen)
		green.Printf("✓ Milestone %d now requires %d\n", p.MilestoneID, p.PrerequisiteID)
		return nil

	case "list":
		if len(args) < 2 {
			return fmt.Errorf("usage: grove-admin prereq list <milestone-id>")
		}

		var resp struct {
			Prerequisites []prerequisite `json:"prerequisites"`
		}
		if err := client.get(ctx, "/v1/milestones/"+args[1]+"/prerequisites", &resp); err != nil {
			return err
		}

		if len(resp.Prerequisites) == 0 {
			fmt.Println("No prerequisites.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MILESTONE\tREQUIRES\tADDED AT")
		fmt.Fprintln(w, "---------\t--------\t--------")
		for _, p := range resp.Prerequisites {
			fmt.Fprintf(w, "%d\t%d\t%d\n",
				p.MilestoneID,
				p.PrerequisiteID,
				p.AddedAt,
			)
		}
		return w.Flush()

	default:
		return fmt.Errorf("unknown prereq subcommand: %s", args[0])
	}
}

func cmdComplete(ctx context.Context, client *apiClient, args []string) error {
	self := false
	if len(args) > 0 && args[0] == "self" {
		self = true
		args = args[1:]
	}

	var milestoneArg, learnerID, evidence string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--milestone", "-m":
			if i+1 >= len(args) {
				return fmt.Errorf("--milestone requires a value")
			}
			milestoneArg = args[i+1]
			i++
		case "--learner", "-l":
			if i+1 >= len(args) {
				return fmt.Errorf("--learner requires a value")
			}
			learnerID = args[i+1]
			i++
		case "--evidence", "-e":
			if i+1 >= len(args) {
				return fmt.Errorf("--evidence requires a value")
			}
			evidence = args[i+1]
			i++
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	if milestoneArg == "" {
		return fmt.Errorf("--milestone is required")
	}
	milestoneID, err := strconv.ParseUint(milestoneArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid milestone id %q", milestoneArg)
	}

	var c completion
	if self {
		body := map[string]any{"milestone_id": milestoneID, "evidence_url": evidence}
		if err := client.post(ctx, "/v1/completions/self", body, &c); err != nil {
			return err
		}
	} else {
		if learnerID == "" {
			return fmt.Errorf("--learner is required")
		}
		body := map[string]any{"milestone_id": milestoneID, "learner_id": learnerID, "evidence_url": evidence}
		if err := client.post(ctx, "/v1/completions", body, &c); err != nil {
			return err
		}
	}

	green := color.New(color.FgGreen)
	green.Println("✓ Completion recorded")
	fmt.Printf("  Milestone:  %d\n", c.MilestoneID)
	fmt.Printf("  Learner:    %s\n", c.LearnerID)
	fmt.Printf("  Verified:   %s\n", c.VerifiedBy)
	fmt.Printf("  At:         %d\n", c.CompletedAt)

	return nil
}

func cmdCompletions(ctx context.Context, client *apiClient, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: grove-admin completions <learner-id>")
	}

	var resp struct {
		Completions []completion `json:"completions"`
	}
	if err := client.get(ctx, "/v1/learners/"+args[0]+"/completions", &resp); err != nil {
		return err
	}

	if len(resp.Completions) == 0 {
		fmt.Println("No completions found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MILESTONE\tCOMPLETED AT\tVERIFIED BY\tEVIDENCE")
	fmt.Fprintln(w, "---------\t------------\t-----------\t--------")
	for _, c := range resp.Completions {
		evidence := c.EvidenceURL
		if evidence == "" {
			evidence = "-"
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n",
			c.MilestoneID,
			c.CompletedAt,
			truncate(c.VerifiedBy, 20),
			truncate(evidence, 40),
		)
	}
	return w.Flush()
}

func cmdAudit(ctx context.Context, client *apiClient, args []string) error {
	params := make([]string, 0, 4)
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--action", "-a":
			if i+1 >= len(args) {
				return fmt.Errorf("--action requires a value")
			}
			params = append(params, "action="+args[i+1])
			i++
		case "--actor":
			if i+1 >= len(args) {
				return fmt.Errorf("--actor requires a value")
			}
			params = append(params, "actor="+args[i+1])
			i++
		case "--since":
			if i+1 >= len(args) {
				return fmt.Errorf("--since requires a value")
			}
			params = append(params, "since="+args[i+1])
			i++
		case "--until":
			if i+1 >= len(args) {
				return fmt.Errorf("--until requires a value")
			}
			params = append(params, "until="+args[i+1])
			i++
		case "--limit", "-n":
			if i+1 >= len(args) {
				return fmt.Errorf("--limit requires a value")
			}
			params = append(params, "limit="+args[i+1])
			i++
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	path := "/v1/admin/audit"
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}

	var resp struct {
		Entries []auditEntry `json:"entries"`
	}
	if err := client.get(ctx, path, &resp); err != nil {
		return err
	}

	if len(resp.Entries) == 0 {
		fmt.Println("No audit entries found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "AT\tACTOR\tACTION\tTARGET\tDETAIL")
	fmt.Fprintln(w, "--\t-----\t------\t------\t------")
	for _, e := range resp.Entries {
		detail := "-"
		if len(e.Detail) > 0 {
			if data, err := json.Marshal(e.Detail); err == nil {
				detail = string(data)
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s/%s\t%s\n",
			e.At,
			truncate(e.ActorID, 20),
			e.Action,
			e.TargetType,
			truncate(e.TargetID, 20),
			truncate(detail, 40),
		)
	}
	return w.Flush()
}

func cmdToken(ctx context.Context, client *apiClient, args []string) error {
	if len(args) < 1 || args[0] != "create" {
		return fmt.Errorf("usage: grove-admin token create --user ID [--ttl DUR]")
	}
	args = args[1:]

	var userID, ttl string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--user", "-u":
			if i+1 >= len(args) {
				return fmt.Errorf("--user requires a value")
			}
			userID = args[i+1]
			i++
		case "--ttl", "-t":
			if i+1 >= len(args) {
				return fmt.Errorf("--ttl requires a value")
			}
			ttl = args[i+1]
			i++
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	if userID == "" {
		return fmt.Errorf("--user is required")
	}

	body := map[string]any{"user_id": userID}
	if ttl != "" {
		body["ttl"] = ttl
	}

	var resp struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
		TTL    string `json:"ttl"`
	}
	if err := client.post(ctx, "/v1/admin/tokens", body, &resp); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Println("Token created successfully")
	fmt.Println()
	fmt.Printf("  User:     %s\n", resp.UserID)
	fmt.Printf("  Valid:    %s\n", resp.TTL)
	fmt.Println()
	fmt.Println("  Token (keep this secret!):")
	fmt.Printf("  %s\n", resp.Token)

	return nil
}

// --- Helpers ---

func getToken() string {
	if token := os.Getenv("GROVE_TOKEN"); token != "" {
		return token
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	tokenPath := filepath.Join(configDir, "grove-ledger", "token")
	data, err := os.ReadFile(tokenPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
