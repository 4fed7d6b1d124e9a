package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketgate/clientcli"
)

var configureCmd = &cobra.Command{
	Use:   "configure [profile]",
	Short: "Create or update a server profile",
	Long: `Prompt for an endpoint, username and password and save them as a profile.

The profile name defaults to "default". Existing values are offered as
prompt defaults, so re-running configure edits a profile in place. The
first profile saved becomes the default; use --default to switch.

Profiles are stored in ~/.bucketgate/config.yaml unless --config or
BUCKETGATE_CLI_CONFIG points elsewhere.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigure,
}

var makeDefault bool

func init() {
	configureCmd.Flags().BoolVar(&makeDefault, "default", false, "make this the default profile")
}

func runConfigure(_ *cobra.Command, args []string) error {
	name := "default"
	if len(args) > 0 {
		name = args[0]
	}
	configPath := getConfigPath()

	file, err := clientcli.LoadConfigFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		file = &clientcli.ConfigFile{}
	case err != nil:
		return fmt.Errorf("load config: %w", err)
	}

	current, _ := file.Lookup(name)
	if current.Name != name {
		current = clientcli.Profile{Name: name, Endpoint: clientcli.DefaultEndpoint}
	}

	endpointURL, err := ask("Endpoint URL", current.Endpoint, 0, validateEndpoint)
	if err != nil {
		return handlePromptError(err)
	}
	user, err := ask("Username", current.Username, 0, required(clientcli.ErrUsernameRequired))
	if err != nil {
		return handlePromptError(err)
	}
	pass, err := ask("Password", "", '*', required(clientcli.ErrPasswordRequired))
	if err != nil {
		return handlePromptError(err)
	}

	fmt.Print("Checking server health... ")
	if err := checkHealth(endpointURL); err != nil {
		fmt.Printf("FAILED (%v)\n", err)
		if !confirm("Save profile anyway") {
			fmt.Println("Cancelled.")
			return nil
		}
	} else {
		fmt.Println("OK")
	}

	replaced := file.Put(clientcli.Profile{
		Name:     name,
		Endpoint: strings.TrimSuffix(endpointURL, "/"),
		Username: user,
		Password: pass,
		Default:  makeDefault || current.Default,
	})
	if err := file.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	verb := "saved"
	if replaced {
		verb = "updated"
	}
	fmt.Printf("Profile %q %s in %s\n", name, verb, configPath)
	return nil
}

func ask(label, def string, mask rune, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{Label: label, Default: def, Mask: mask, Validate: validate}
	return p.Run()
}

func confirm(label string) bool {
	p := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := p.Run()
	return err == nil
}

func required(errEmpty error) promptui.ValidateFunc {
	return func(input string) error {
		if input == "" {
			return errEmpty
		}
		return nil
	}
}

func validateEndpoint(input string) error {
	u, err := url.Parse(input)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	return nil
}

// checkHealth expects 200 from the server's /healthz.
func checkHealth(endpointURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(endpointURL, "/")+"/healthz", http.NoBody)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// handlePromptError treats Ctrl-C and Ctrl-D as a clean cancel.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrEOF) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
