package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/attire/internal/closet"
	"github.com/felixgeelhaar/attire/internal/garment"
	"github.com/felixgeelhaar/attire/internal/generator"
	"github.com/felixgeelhaar/attire/internal/history"
	"github.com/felixgeelhaar/attire/internal/outfit"
	"github.com/felixgeelhaar/attire/internal/pipeline"
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Compose an outfit on a base model photo",
	Long: `Generate a base model from a photo, layer garments onto it, and
optionally move the model through poses. Each garment is given as
category=path, for example:

  attire fit --base model.jpg --garment top=tee.png --garment bottom=jeans.png

Applying a second garment of the same category replaces the first. The
final look can be written to a file with --out and saved to the closet
with --save.`,
	RunE: runFit,
}

var (
	fitBase     string
	fitGarments []string
	fitPose     string
	fitOut      string
	fitSave     string
	fitScripted bool
)

func init() {
	fitCmd.Flags().StringVar(&fitBase, "base", "", "base model photo (required)")
	fitCmd.Flags().StringArrayVar(&fitGarments, "garment", nil, "garment to apply, as category=path (repeatable)")
	fitCmd.Flags().StringVar(&fitPose, "pose", "", "final pose key (default is the first catalog pose)")
	fitCmd.Flags().StringVar(&fitOut, "out", "", "write the final image to this file")
	fitCmd.Flags().StringVar(&fitSave, "save", "", "save the final look to the closet under this name")
	fitCmd.Flags().BoolVar(&fitScripted, "scripted", false, "use the offline scripted generator")
	fitCmd.MarkFlagRequired("base")

	rootCmd.AddCommand(fitCmd)
}

func runFit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	client, err := newClient(cfg, fitScripted)
	if err != nil {
		return err
	}
	defer client.Close()

	baseRef, err := generator.EncodeImageFile(fitBase)
	if err != nil {
		return err
	}

	session := outfit.NewSession(baseRef)
	exec, err := pipeline.New(session, client, pipeline.Options{
		CacheCapacity: cfg.Cache.Capacity,
		Catalog:       catalog,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	fmt.Println("Generating base model...")
	if _, err := exec.EnsureBaseModel(ctx); err != nil {
		return err
	}

	for _, spec := range fitGarments {
		sel, err := parseGarmentFlag(spec)
		if err != nil {
			return err
		}
		fmt.Printf("Applying %s (%s)...\n", sel.Name, sel.Category)
		if _, err := exec.ApplyGarment(ctx, sel); err != nil {
			return err
		}
	}

	if fitPose != "" {
		index := catalog.IndexOf(fitPose)
		if index < 0 {
			return fmt.Errorf("unknown pose %q (use 'attire poses' to list them)", fitPose)
		}
		fmt.Printf("Posing: %s...\n", catalog.Entry(index).Label)
		if _, err := exec.SelectPose(ctx, index); err != nil {
			return err
		}
	}

	snap := exec.Snapshot()
	fmt.Printf("\nOutfit %s at pose %s (%d layers)\n",
		snap.Signature.Short(), snap.PoseKey, len(exec.Session().Layers()))

	if fitOut != "" {
		if err := writeImageRef(snap.ImageRef, fitOut); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", fitOut)
	}

	if fitSave != "" {
		saved, err := saveToCloset(cfg.Closet.Path, history.Entry{
			Signature:   snap.Signature,
			PoseKey:     snap.PoseKey,
			ArtifactRef: snap.ImageRef,
			Layers:      exec.Session().Layers(),
		}, fitSave)
		if err != nil {
			return err
		}
		fmt.Printf("Saved to closet as %q (id %d)\n", saved.Name, saved.ID)
	}
	return nil
}

// parseGarmentFlag parses a category=path garment flag into a selection.
func parseGarmentFlag(spec string) (garment.Selection, error) {
	category, path, found := strings.Cut(spec, "=")
	if !found {
		return garment.Selection{}, fmt.Errorf("garment %q must be category=path", spec)
	}

	ref, err := generator.EncodeImageFile(path)
	if err != nil {
		return garment.Selection{}, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return garment.Selection{
		ImageRef: ref,
		Name:     name,
		Category: category,
	}, nil
}

// writeImageRef writes a generated reference to a file. Non-data references
// (scripted output) are written as-is for inspection.
func writeImageRef(ref, path string) error {
	if strings.HasPrefix(ref, "data:") {
		_, data, err := generator.DecodeDataRef(ref)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	}
	return os.WriteFile(path, []byte(ref+"\n"), 0644)
}

func saveToCloset(path string, entry history.Entry, name string) (*history.SavedOutfit, error) {
	store, err := closet.Open(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Save(entry, name, "")
}
