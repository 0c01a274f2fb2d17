package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/digitalbiztech/bizsite/content"
)

var blogCmd = &cobra.Command{
	Use:   "blog",
	Short: "Blog tools",
}

var blogImportCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import markdown posts with YAML front matter",
	Long: `Reads every .md file in dir. Front matter may set title, slug, category,
excerpt, date, author and image; the rest of the file is the post body.
Posts are upserted by slug into the stored blog collection.`,
	Args: cobra.ExactArgs(1),
	RunE: runBlogImport,
}

func init() {
	blogCmd.AddCommand(blogImportCmd)
}

type postMatter struct {
	Title    string `yaml:"title"`
	Slug     string `yaml:"slug"`
	Category string `yaml:"category"`
	Excerpt  string `yaml:"excerpt"`
	Date     string `yaml:"date"`
	Author   string `yaml:"author"`
	Image    string `yaml:"image"`
}

// parsePost builds a blog record from a markdown file. The title falls back
// to the file name when the front matter has none.
func parsePost(name string, data []byte, now time.Time) (content.Blog, error) {
	var fm postMatter
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return content.Blog{}, fmt.Errorf("%s: front matter: %w", name, err)
	}
	post := content.Blog{
		Title:    fm.Title,
		Slug:     fm.Slug,
		Category: fm.Category,
		Excerpt:  fm.Excerpt,
		Date:     fm.Date,
		Author:   fm.Author,
		Image:    fm.Image,
		Content:  strings.TrimSpace(string(body)),
	}
	if post.Title == "" {
		post.Title = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	if err := post.Normalize(now); err != nil {
		return content.Blog{}, fmt.Errorf("%s: %w", name, err)
	}
	return post, nil
}

func runBlogImport(cmd *cobra.Command, args []string) error {
	files, err := filepath.Glob(filepath.Join(args[0], "*.md"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .md files in %s", args[0])
	}
	sort.Strings(files)

	now := time.Now()
	var parsed []content.Blog
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		post, err := parsePost(f, data, now)
		if err != nil {
			return err
		}
		parsed = append(parsed, post)
	}

	s, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	posts, err := content.List[content.Blog](cmd.Context(), s, content.KindBlogs)
	if err != nil {
		return err
	}
	for _, p := range parsed {
		posts = content.Upsert(posts, p)
		logger.Debug("imported post", zap.String("slug", p.Slug))
	}
	if err := content.Save(cmd.Context(), s, content.KindBlogs, posts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d posts (%d total)\n", len(parsed), len(posts))
	return nil
}
