package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"admin-console-go/internal/admin"

	"github.com/spf13/cobra"
)

// contentArg reads the content from --file, "-" for stdin, or the argument.
func contentArg(cmd *cobra.Command, file string, args []string) (string, error) {
	switch {
	case file == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	case file != "":
		b, err := os.ReadFile(file)
		return string(b), err
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		return "", fmt.Errorf("content required: pass it as an argument or with --file")
	}
}

func showDocument(cmd *cobra.Command, doc *admin.Document) error {
	a := appFrom(cmd)
	if a.opts.jsonOutput {
		return printJSON(a.out(cmd), doc)
	}
	printDocument(a.out(cmd), doc)
	return nil
}

func sessionRequired(cmd *cobra.Command, args []string) error {
	if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
		return err
	}
	return appFrom(cmd).requireSession()
}

func newPrivacyCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "privacy", Short: "Read or publish the privacy policy", PersistentPreRunE: sessionRequired}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current privacy policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := appFrom(cmd).svc.Content.GetPrivacyPolicy(cmd.Context())
			if err != nil {
				return err
			}
			return showDocument(cmd, doc)
		},
	})

	var file string
	set := &cobra.Command{
		Use:   "set [html]",
		Short: "Publish a new privacy policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := contentArg(cmd, file, args)
			if err != nil {
				return err
			}
			doc, err := appFrom(cmd).svc.Content.SavePrivacyPolicy(cmd.Context(), content)
			if err != nil {
				return err
			}
			return showDocument(cmd, doc)
		},
	}
	set.Flags().StringVar(&file, "file", "", "Read content from a file, - for stdin")
	cmd.AddCommand(set)
	return cmd
}

func newTermsCmd() *cobra.Command {
	var lang string
	cmd := &cobra.Command{Use: "terms", Short: "Read or publish terms and conditions", PersistentPreRunE: sessionRequired}
	cmd.PersistentFlags().StringVar(&lang, "lang", "en", "Language of the terms")

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current terms for a language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := appFrom(cmd).svc.Content.GetTerms(cmd.Context(), lang)
			if err != nil {
				return err
			}
			return showDocument(cmd, doc)
		},
	})

	var file string
	set := &cobra.Command{
		Use:   "set [text]",
		Short: "Publish a new terms version for a language",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := contentArg(cmd, file, args)
			if err != nil {
				return err
			}
			doc, err := appFrom(cmd).svc.Content.SaveTerms(cmd.Context(), lang, content)
			if err != nil {
				return err
			}
			return showDocument(cmd, doc)
		},
	}
	set.Flags().StringVar(&file, "file", "", "Read content from a file, - for stdin")
	cmd.AddCommand(set)
	return cmd
}

func newAboutCmd() *cobra.Command {
	var lang, platform string
	cmd := &cobra.Command{Use: "about", Short: "Read or publish the about-app text", PersistentPreRunE: sessionRequired}
	cmd.PersistentFlags().StringVar(&lang, "lang", "en", "Language")
	cmd.PersistentFlags().StringVar(&platform, "platform", "android", "Platform (android, ios, web)")

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the about-app text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := appFrom(cmd).svc.Content.GetAboutApp(cmd.Context(), lang, platform)
			if err != nil {
				return err
			}
			return showDocument(cmd, doc)
		},
	})

	var file string
	set := &cobra.Command{
		Use:   "set [text]",
		Short: "Publish the about-app text",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := contentArg(cmd, file, args)
			if err != nil {
				return err
			}
			doc, err := appFrom(cmd).svc.Content.SaveAboutApp(cmd.Context(), lang, platform, content)
			if err != nil {
				return err
			}
			return showDocument(cmd, doc)
		},
	}
	set.Flags().StringVar(&file, "file", "", "Read content from a file, - for stdin")
	cmd.AddCommand(set)
	return cmd
}

func newUploadCmd() *cobra.Command {
	var contentType string
	cmd := &cobra.Command{
		Use:               "upload <file>",
		Short:             "Upload a file and print its URL",
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: sessionRequired,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ct := contentType
			if ct == "" {
				ct = mime.TypeByExtension(filepath.Ext(args[0]))
			}
			url, err := a.svc.Auth.Upload(cmd.Context(), filepath.Base(args[0]), ct, data)
			if err != nil {
				return err
			}
			if a.opts.jsonOutput {
				return printJSON(a.out(cmd), map[string]string{"url": url})
			}
			fmt.Fprintln(a.out(cmd), url)
			return nil
		},
	}
	cmd.Flags().StringVar(&contentType, "content-type", "", "Override the detected content type")
	return cmd
}
