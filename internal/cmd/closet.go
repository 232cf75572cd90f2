package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/attire/internal/closet"
)

var closetCmd = &cobra.Command{
	Use:   "closet",
	Short: "Manage saved outfits",
}

var closetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved outfits",
	RunE:  runClosetList,
}

var closetDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved outfit",
	Args:  cobra.ExactArgs(1),
	RunE:  runClosetDelete,
}

var closetJSON bool

func init() {
	closetListCmd.Flags().BoolVar(&closetJSON, "json", false, "output as JSON")

	closetCmd.AddCommand(closetListCmd)
	closetCmd.AddCommand(closetDeleteCmd)
	rootCmd.AddCommand(closetCmd)
}

func openCloset() (*closet.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return closet.Open(cfg.Closet.Path)
}

func runClosetList(cmd *cobra.Command, args []string) error {
	store, err := openCloset()
	if err != nil {
		return err
	}
	defer store.Close()

	outfits, err := store.List()
	if err != nil {
		return err
	}

	if closetJSON {
		data, err := json.MarshalIndent(outfits, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal outfits: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(outfits) == 0 {
		fmt.Println("No saved outfits. Save one with: attire fit --save <name>")
		return nil
	}

	for _, o := range outfits {
		fmt.Printf("%4d  %-24s %s  pose %-12s %s\n",
			o.ID, o.Name, o.Signature.Short(), o.PoseKey,
			o.SavedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runClosetDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid outfit id %q", args[0])
	}

	store, err := openCloset()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(id); err != nil {
		return err
	}
	fmt.Printf("Deleted outfit %d\n", id)
	return nil
}
