package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"jarvisd/internal/config"
	"jarvisd/internal/shield"

	"github.com/spf13/cobra"
)

var signaturesCmd = &cobra.Command{
	Use:   "signatures",
	Short: "Manage threat signature packs",
	Long: `Manage threat signature packs.

Signature packs are YAML files adding detection patterns on top of the
built-in table. Packs live in ~/.jarvisd/signatures/ and are merged at
startup; a pack whose filename starts with an underscore is disabled.

Examples:
  jarvisd signatures list                  # List installed packs
  jarvisd signatures enable extra-jailbreaks
  jarvisd signatures disable extra-jailbreaks
  jarvisd signatures show extra-jailbreaks`,
}

var signaturesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed signature packs",
	RunE:  signaturesList,
}

var signaturesEnableCmd = &cobra.Command{
	Use:   "enable <pack-name>",
	Short: "Enable a disabled signature pack",
	Args:  cobra.ExactArgs(1),
	RunE:  signaturesEnable,
}

var signaturesDisableCmd = &cobra.Command{
	Use:   "disable <pack-name>",
	Short: "Disable a signature pack (prefix with underscore)",
	Args:  cobra.ExactArgs(1),
	RunE:  signaturesDisable,
}

var signaturesShowCmd = &cobra.Command{
	Use:   "show <pack-name>",
	Short: "Show the signatures in a pack",
	Args:  cobra.ExactArgs(1),
	RunE:  signaturesShow,
}

func init() {
	signaturesCmd.AddCommand(signaturesListCmd)
	signaturesCmd.AddCommand(signaturesEnableCmd)
	signaturesCmd.AddCommand(signaturesDisableCmd)
	signaturesCmd.AddCommand(signaturesShowCmd)
	rootCmd.AddCommand(signaturesCmd)
}

func signaturesDir() (string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cfg.PacksDir, 0700); err != nil {
		return "", err
	}
	return cfg.PacksDir, nil
}

func signaturesList(cmd *cobra.Command, args []string) error {
	dir, err := signaturesDir()
	if err != nil {
		return err
	}

	builtin := shield.BuiltinSignatures()
	_, infos, err := shield.LoadPacks(dir, builtin)
	if err != nil {
		return fmt.Errorf("failed to load packs: %w", err)
	}

	fmt.Printf("Built-in signatures: %d\n\n", len(builtin))

	if len(infos) == 0 {
		fmt.Println("No signature packs installed.")
		fmt.Printf("\nTo install packs, copy YAML files to: %s\n", dir)
		return nil
	}

	fmt.Println("Installed Signature Packs:")
	fmt.Println(strings.Repeat("─", 60))
	for _, info := range infos {
		status := "enabled "
		if !info.Enabled {
			status = "disabled"
		}
		fmt.Printf("  %s  %-25s %s\n", status, info.Name, info.Description)
		if info.Version != "" {
			fmt.Printf("            v%s by %s  (%d signatures)\n", info.Version, info.Author, info.SignatureCount)
		}
	}
	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("\nPacks directory: %s\n", dir)
	return nil
}

func signaturesEnable(cmd *cobra.Command, args []string) error {
	dir, err := signaturesDir()
	if err != nil {
		return err
	}

	name := args[0]
	disabledPath := filepath.Join(dir, "_"+name+".yaml")
	enabledPath := filepath.Join(dir, name+".yaml")

	if _, err := os.Stat(disabledPath); err == nil {
		if err := os.Rename(disabledPath, enabledPath); err != nil {
			return fmt.Errorf("failed to enable pack: %w", err)
		}
		fmt.Printf("Pack '%s' enabled.\n", name)
		return nil
	}

	if _, err := os.Stat(enabledPath); err == nil {
		fmt.Printf("Pack '%s' is already enabled.\n", name)
		return nil
	}

	return fmt.Errorf("pack '%s' not found in %s", name, dir)
}

func signaturesDisable(cmd *cobra.Command, args []string) error {
	dir, err := signaturesDir()
	if err != nil {
		return err
	}

	name := args[0]
	enabledPath := filepath.Join(dir, name+".yaml")
	disabledPath := filepath.Join(dir, "_"+name+".yaml")

	if _, err := os.Stat(enabledPath); err == nil {
		if err := os.Rename(enabledPath, disabledPath); err != nil {
			return fmt.Errorf("failed to disable pack: %w", err)
		}
		fmt.Printf("Pack '%s' disabled.\n", name)
		return nil
	}

	if _, err := os.Stat(disabledPath); err == nil {
		fmt.Printf("Pack '%s' is already disabled.\n", name)
		return nil
	}

	return fmt.Errorf("pack '%s' not found in %s", name, dir)
}

func signaturesShow(cmd *cobra.Command, args []string) error {
	dir, err := signaturesDir()
	if err != nil {
		return err
	}

	_, infos, err := shield.LoadPacks(dir, nil)
	if err != nil {
		return fmt.Errorf("failed to load packs: %w", err)
	}

	name := args[0]
	for _, info := range infos {
		if info.Name != name {
			continue
		}
		pack, err := shield.LoadPackFile(info.Path)
		if err != nil {
			return fmt.Errorf("failed to read pack: %w", err)
		}
		fmt.Printf("%s (v%s by %s)\n", pack.Name, pack.Version, pack.Author)
		if pack.Description != "" {
			fmt.Printf("%s\n", pack.Description)
		}
		fmt.Println()
		for _, sig := range pack.Signatures {
			fmt.Printf("  %-24s %s\n", sig.ID, sig.Category)
			for _, c := range sig.Contains {
				fmt.Printf("    contains: %q\n", c)
			}
			if sig.Regex != "" {
				fmt.Printf("    regex:    %s\n", sig.Regex)
			}
		}
		return nil
	}

	return fmt.Errorf("pack '%s' not found in %s", name, dir)
}
