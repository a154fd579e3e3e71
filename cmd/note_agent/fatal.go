package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jonathan/note-harvester/internal/crawling"
	"github.com/jonathan/note-harvester/internal/curation"
	"github.com/jonathan/note-harvester/internal/llm"
	"github.com/jonathan/note-harvester/internal/publish"
	"github.com/jonathan/note-harvester/internal/schemas"
	"github.com/jonathan/note-harvester/internal/session"
	"github.com/jonathan/note-harvester/internal/summarize"
)

// explain returns advice for errors the user can act on, or "".
func explain(err error) string {
	var (
		credErr     *session.CredentialLoadError
		authErr     *session.AuthVerificationError
		missingErr  *curation.SourceMissingError
		emptyErr    *summarize.EmptyCorpusError
		stepErr     *publish.StepError
		manifestErr *crawling.ManifestError
		schemaErr   *schemas.ValidationError
		llmErr      *llm.ResponseError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return "The run was interrupted. Files written so far are kept."
	case errors.As(err, &credErr):
		return "Export the cookies of a logged-in browser session with a cookie editor extension\n" +
			"and save them as a JSON array at the path given by --cookies or cookies_path."
	case errors.As(err, &authErr):
		return "The site sent the browser to its login page, so the cookies are expired or invalid.\n" +
			"Log in again in your browser, export fresh cookies and retry."
	case errors.As(err, &missingErr):
		return "Nothing to curate yet. Run 'note_agent crawl' first or point --source at an existing corpus."
	case errors.As(err, &emptyErr):
		return "No curated note has any text. Run 'note_agent curate' or lower --min-text."
	case errors.As(err, &stepErr):
		return fmt.Sprintf("The editor did not show the control for step %q in time.\n"+
			"Check that the account can publish and that the page layout has not changed.", stepErr.Step)
	case errors.As(err, &manifestErr):
		return "The manifest could not be written. Check that the output directory is writable."
	case errors.As(err, &llmErr):
		return "The model returned no usable text. Retry, or pick another model with --model."
	case errors.As(err, &schemaErr):
		return "Fix the listed fields and run 'note_agent validate' again."
	default:
		return ""
	}
}

// reportFatal prints err and any advice for it.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func reportFatal(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if advice := explain(err); advice != "" {
		fmt.Fprintf(w, "\n%s\n", advice)
	}
}

// waitForEnter blocks until a line (or EOF) is read from r so a console
// window opened for the run stays visible.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func waitForEnter(r io.Reader, w io.Writer) {
	fmt.Fprint(w, "\nPress Enter to exit...")
	_, _ = bufio.NewReader(r).ReadString('\n')
}
