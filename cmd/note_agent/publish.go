package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/note-harvester/internal/assets"
	"github.com/jonathan/note-harvester/internal/config"
	"github.com/jonathan/note-harvester/internal/curation"
	"github.com/jonathan/note-harvester/internal/logging"
	"github.com/jonathan/note-harvester/internal/publish"
	"github.com/jonathan/note-harvester/internal/summarize"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a note through the creator editor",
	Long: `Logs in with exported cookies and publishes one image note.

The post can be given directly (--title, --body or --body-file, --image), taken
from a curated note folder (--item), or drafted by Gemini from a summary file
(--draft-from). Explicit flags win over values taken from --item or --draft-from.`,
	RunE: runPublish,
}

var (
	publishTitle     string
	publishBody      string
	publishBodyFile  string
	publishImages    []string
	publishItem      string
	publishTags      []string
	publishDraftFrom string
	publishCookies   string
	publishHeadless  bool
	publishAPIKey    string
)

func init() {
	publishCmd.Flags().StringVar(&publishTitle, "title", "", "Post title (cut to 20 characters)")
	publishCmd.Flags().StringVar(&publishBody, "body", "", "Post body")
	publishCmd.Flags().StringVar(&publishBodyFile, "body-file", "", "File holding the post body")
	publishCmd.Flags().StringSliceVarP(&publishImages, "image", "i", nil, "Image to upload (repeatable)")
	publishCmd.Flags().StringVar(&publishItem, "item", "", "Curated note folder to republish (images, text.txt, folder name as title)")
	publishCmd.Flags().StringSliceVar(&publishTags, "tag", nil, "Hashtag appended to the body (repeatable)")
	publishCmd.Flags().StringVar(&publishDraftFrom, "draft-from", "", "Summary file to draft title and body from with Gemini")
	publishCmd.Flags().StringVar(&publishCookies, "cookies", "", "Exported cookie JSON file (default: cookies.json)")
	publishCmd.Flags().BoolVar(&publishHeadless, "headless", true, "Run Chrome without a window")
	publishCmd.Flags().StringVar(&publishAPIKey, "api-key", "", "Gemini API key for --draft-from (overrides GEMINI_API_KEY env var)")

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, _ []string) error {
	a, err := newApp(func(cfg *config.Config) {
		if changed(cmd, "cookies") {
			cfg.CookiesPath = publishCookies
		}
		if changed(cmd, "headless") {
			headless := publishHeadless
			cfg.Headless = &headless
		}
		if changed(cmd, "api-key") {
			cfg.APIKey = publishAPIKey
		}
	})
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()

	var post publish.Post
	if publishItem != "" {
		if post, err = postFromItem(publishItem); err != nil {
			return err
		}
	}

	if publishDraftFrom != "" {
		summary, err := os.ReadFile(publishDraftFrom)
		if err != nil {
			return fmt.Errorf("failed to read summary %s: %w", publishDraftFrom, err)
		}
		client, err := a.newLLM(ctx)
		if err != nil {
			return err
		}
		draft, err := summarize.New(client, a.log, 0).DraftPost(ctx, string(summary))
		_ = client.Close()
		if err != nil {
			return fmt.Errorf("failed to draft post: %w", err)
		}
		post.Title, post.Body = draft.Title, draft.Body
	}

	if err := applyPostFlags(cmd, &post); err != nil {
		return err
	}
	if strings.TrimSpace(post.Title) == "" || strings.TrimSpace(post.Body) == "" {
		return errors.New("a title and a body are required: use --title and --body, --item or --draft-from")
	}

	chrome, err := a.startSession(ctx)
	if err != nil {
		return err
	}
	defer chrome.Close()

	opts := publish.DefaultOptions()
	if a.cfg.PublishURL != "" {
		opts.URL = a.cfg.PublishURL
	}
	opts.ElementTimeout = a.cfg.ElementTimeout()

	a.log.Info("publishing note",
		logging.String("title", post.Title),
		logging.Int("images", len(post.ImagePaths)))
	return publish.New(opts, a.log).Publish(ctx, chrome, post)
}

// applyPostFlags lets explicit flags override an item or draft.
func applyPostFlags(cmd *cobra.Command, post *publish.Post) error {
	if changed(cmd, "title") {
		post.Title = publishTitle
	}
	if changed(cmd, "body-file") {
		data, err := os.ReadFile(publishBodyFile)
		if err != nil {
			return fmt.Errorf("failed to read body file %s: %w", publishBodyFile, err)
		}
		post.Body = string(data)
	}
	if changed(cmd, "body") {
		post.Body = publishBody
	}
	if changed(cmd, "image") {
		post.ImagePaths = publishImages
	}
	if changed(cmd, "tag") {
		post.Hashtags = publishTags
	}
	return nil
}

// postFromItem builds a post from a curated note folder.
func postFromItem(dir string) (publish.Post, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return publish.Post{}, fmt.Errorf("failed to read item folder %s: %w", dir, err)
	}

	var images []string
	for _, e := range entries {
		if !e.IsDir() && curation.IsImageFile(e.Name()) {
			images = append(images, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(images)

	post := publish.Post{
		Title:      strings.ReplaceAll(filepath.Base(filepath.Clean(dir)), "_", " "),
		ImagePaths: images,
	}
	if data, err := os.ReadFile(filepath.Join(dir, assets.TextFileName)); err == nil {
		post.Body = strings.TrimSpace(string(data))
	}
	return post, nil
}
