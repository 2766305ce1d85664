// i18n-sync: keeps iOS .strings/.stringsdict resources, a YAML translation
// document and Android string resources in sync.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/i18nsync/android"
	"github.com/minios-linux/i18nsync/apply"
	"github.com/minios-linux/i18nsync/config"
	"github.com/minios-linux/i18nsync/diag"
	"github.com/minios-linux/i18nsync/extract"
	"github.com/minios-linux/i18nsync/i18n"
	"github.com/minios-linux/i18nsync/langmeta"
	"github.com/minios-linux/i18nsync/lproj"
	"github.com/minios-linux/i18nsync/merge"
	"github.com/minios-linux/i18nsync/model"
	"github.com/minios-linux/i18nsync/stringsfile"
	"github.com/minios-linux/i18nsync/yamldoc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// errIncomplete is returned by extract --strict when translations are missing.
var errIncomplete = errors.New("translations are incomplete")

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "i18n-sync",
		Short: i18n.T("Sync iOS and Android translations through a YAML document"),
		Long: i18n.T(`i18n-sync keeps the .strings and .stringsdict files of an iOS project,
a single YAML translation document and Android string resources in sync.

Commands:
  extract        Read *.lproj resources and write the YAML document
  apply          Write the YAML document back to *.lproj resources
  apply-android  Generate Android res/values*/strings.xml from the document
  status         Show per-locale completeness of the document

Settings are read from .i18n-sync.yaml in the project root when present.
Command-line flags override it.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flag, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", i18n.T("Project root directory"))

	root.AddCommand(
		newExtractCmd(),
		newApplyCmd(),
		newApplyAndroidCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Shared project flags
// ---------------------------------------------------------------------------

// projectFlags holds the path and locale overrides common to all commands.
type projectFlags struct {
	resources  string
	document   string
	androidRes string
	baseLocale string
	locales    []string
	dryRun     bool
}

// register adds the project flags to fs. docName and docShort name the
// document flag, which reads as --output for extract and --input elsewhere.
func (pf *projectFlags) register(fs *pflag.FlagSet, docName, docShort string) {
	fs.StringVarP(&pf.resources, "resources", "r", config.DefaultResources, i18n.T("Path to the directory holding *.lproj folders"))
	fs.StringVarP(&pf.document, docName, docShort, config.DefaultDocument, i18n.T("YAML translation document"))
	fs.StringVarP(&pf.androidRes, "android-res", "a", config.DefaultAndroidRes, i18n.T("Android res/ directory"))
	fs.StringVar(&pf.baseLocale, "base-locale", config.DefaultBaseLocale, i18n.T("Development locale"))
	fs.StringSliceVar(&pf.locales, "locales", nil, i18n.T("Comma-separated locale list (default: discovered)"))
	fs.BoolVar(&pf.dryRun, "dry-run", false, i18n.T("Show what would be written without writing"))
}

// project loads the project settings and applies the flags that were set
// explicitly on the command line.
func (pf *projectFlags) project(fs *pflag.FlagSet, docName string) (*config.Project, error) {
	proj, err := config.Detect(rootDir)
	if err != nil {
		return nil, err
	}
	if fs.Changed("resources") {
		proj.Resources = absPath(pf.resources)
	}
	if fs.Changed(docName) {
		proj.Document = absPath(pf.document)
	}
	if fs.Changed("android-res") {
		proj.AndroidRes = absPath(pf.androidRes)
	}
	if fs.Changed("base-locale") {
		proj.BaseLocale = pf.baseLocale
	}
	if fs.Changed("locales") {
		proj.Locales = cleanLocales(pf.locales)
	}
	return proj, nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// cleanLocales trims entries and drops empty ones and duplicates.
func cleanLocales(locales []string) []string {
	seen := make(map[string]bool, len(locales))
	var out []string
	for _, l := range locales {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  i18n.T(`Display version, commit hash, and build date.`),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("i18n-sync version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// extract (*.lproj -> YAML)
// ---------------------------------------------------------------------------

func newExtractCmd() *cobra.Command {
	var pf projectFlags
	var strict bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: i18n.T("Extract *.lproj resources into the YAML document"),
		Long: i18n.T(`Read every <locale>.lproj/*.strings and *.stringsdict file of the
resources directory and write them to the YAML translation document.

Keys with the NS or CF prefix are moved to the InfoPlist section. Changes
against the previous document and missing translations are reported.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := pf.project(cmd.Flags(), "output")
			if err != nil {
				return err
			}
			return runExtract(proj, pf.dryRun, strict)
		},
	}

	pf.register(cmd.Flags(), "output", "o")
	cmd.Flags().BoolVar(&strict, "strict", false, i18n.T("Exit with an error when translations are missing"))

	return cmd
}

func runExtract(proj *config.Project, dryRun, strict bool) error {
	resources, err := lproj.Scan(proj.Resources)
	if err != nil {
		return err
	}

	var stringsInputs, pluralInputs []extract.Input
	for _, r := range resources {
		in := extract.Input{Section: r.Section, Locale: r.Locale, Path: r.Path, Data: r.Data}
		if r.Kind == lproj.Stringsdict {
			pluralInputs = append(pluralInputs, in)
		} else {
			stringsInputs = append(stringsInputs, in)
		}
	}
	logInfo(i18n.N("Found %d resource file", "Found %d resource files", len(resources)), len(resources))

	doc, report := extract.Run(stringsInputs, pluralInputs, extract.Options{
		BaseLocale: proj.BaseLocale,
		Locales:    proj.Locales,
	})
	printDiagnostics(report)

	previous := loadPrevious(proj)
	changes := merge.Diff(previous, doc)
	printChanges(changes)

	data, err := yamldoc.Marshal(doc)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", proj.Document, err)
	}

	keys := countKeys(doc)
	locales := doc.Locales()
	if dryRun {
		logInfo(i18n.T("Dry run: would write %s"), proj.Document)
	} else {
		if err := lproj.WriteFileAtomic(proj.Document, data); err != nil {
			return err
		}
		logSuccess(i18n.T("Saved translations to %s"), proj.Document)
	}
	logSuccess(i18n.T("Extracted %d keys from %d languages"), keys, len(locales))

	if strict && (len(report.Missing()) > 0 || report.HasErrors()) {
		return errIncomplete
	}
	return nil
}

// loadPrevious reads the existing document for the change summary. A
// missing or unreadable document counts as empty.
func loadPrevious(proj *config.Project) *model.Document {
	if !fileExists(proj.Document) {
		return nil
	}
	doc, _, err := yamldoc.ParseFile(proj.Document, proj.BaseLocale)
	if err != nil {
		logWarning(i18n.T("Previous document ignored: %v"), err)
		return nil
	}
	return doc
}

func printChanges(changes []merge.Change) {
	if len(changes) == 0 {
		logInfo("%s", i18n.T("No changes against the previous document"))
		return
	}
	s := merge.Summarize(changes)
	logInfo(i18n.T("Changes: %d added, %d removed, %d changed"), s.Added, s.Removed, s.Changed)
	for _, c := range changes {
		fmt.Fprintf(os.Stderr, "  %s\n", c)
	}
}

// ---------------------------------------------------------------------------
// apply (YAML -> *.lproj)
// ---------------------------------------------------------------------------

func newApplyCmd() *cobra.Command {
	var pf projectFlags

	cmd := &cobra.Command{
		Use:   "apply",
		Short: i18n.T("Write the YAML document back to *.lproj resources"),
		Long: i18n.T(`Write one <Section>.strings file per section and locale, plus
Localizable.stringsdict for plurals. Keys are sorted; existing file headers
are kept and a default header is written for new files. Keys without a
value for a locale are left out and reported.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := pf.project(cmd.Flags(), "input")
			if err != nil {
				return err
			}
			return runApply(proj, pf.dryRun)
		},
	}

	pf.register(cmd.Flags(), "input", "i")

	return cmd
}

func runApply(proj *config.Project, dryRun bool) error {
	doc, err := loadDocument(proj)
	if err != nil {
		return err
	}
	locales := doc.Locales()

	headers := existingHeaders(proj.Resources, doc, locales)
	res := apply.Run(doc, locales, headers)
	printDiagnostics(res.Report)

	for _, f := range res.Files {
		path := lproj.Path(proj.Resources, f.Locale, f.Name)
		if dryRun {
			logInfo(i18n.T("Dry run: would write %s"), path)
			continue
		}
		if err := lproj.WriteFileAtomic(path, f.Data); err != nil {
			return err
		}
		logInfo(i18n.T("Updated %s"), path)
	}
	logSuccess(i18n.T("Applied %d keys to %d languages"), countKeys(doc), len(locales))
	return nil
}

// existingHeaders reads the header comment of every .strings file apply is
// about to replace. Unreadable files are skipped.
func existingHeaders(resources string, doc *model.Document, locales []string) map[apply.HeaderKey]string {
	headers := make(map[apply.HeaderKey]string)
	for _, sec := range doc.Sections() {
		for _, l := range locales {
			data, err := os.ReadFile(lproj.Path(resources, l, sec.Name+apply.ExtStrings))
			if err != nil {
				continue
			}
			if h := stringsfile.ParseHeader(data); h != "" {
				headers[apply.HeaderKey{Section: sec.Name, Locale: l}] = h
			}
		}
	}
	return headers
}

// ---------------------------------------------------------------------------
// apply-android (YAML -> res/values*/strings.xml)
// ---------------------------------------------------------------------------

func newApplyAndroidCmd() *cobra.Command {
	var pf projectFlags

	cmd := &cobra.Command{
		Use:   "apply-android",
		Short: i18n.T("Generate Android string resources from the YAML document"),
		Long: i18n.T(`Write res/values/strings.xml for the base locale, res/values-<q>/strings.xml
for every other locale and res/xml/locales_config.xml.

iOS format specifiers are converted to positional Android specifiers. A value
whose specifiers do not match the base locale is skipped for that locale.
Strings marked translatable="false" in the existing values/strings.xml are
kept.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := pf.project(cmd.Flags(), "input")
			if err != nil {
				return err
			}
			return runApplyAndroid(proj, pf.dryRun)
		},
	}

	pf.register(cmd.Flags(), "input", "i")

	return cmd
}

func runApplyAndroid(proj *config.Project, dryRun bool) error {
	doc, err := loadDocument(proj)
	if err != nil {
		return err
	}

	var existing *android.File
	if src := android.SourceStringsXMLPath(proj.AndroidRes); fileExists(src) {
		existing, err = android.ParseFile(src)
		if err != nil {
			return err
		}
	}

	out, report := android.Generate(doc, android.Options{
		BaseLocale: proj.BaseLocale,
		Locales:    doc.Locales(),
		Existing:   existing,
	})
	printIssues(report)

	for _, f := range out.Files {
		path := filepath.Join(proj.AndroidRes, f.Path)
		if dryRun {
			logInfo(i18n.T("Dry run: would write %s"), path)
			continue
		}
		if err := lproj.WriteFileAtomic(path, f.Data); err != nil {
			return err
		}
		logInfo(i18n.T("Updated %s"), path)
	}

	for _, l := range staleLocales(android.DetectLocales(proj.AndroidRes), doc.Locales()) {
		logWarning(i18n.T("Locale %s has Android resources but is not in the document"), l)
	}
	logSuccess(i18n.N("Generated %d file", "Generated %d files", len(out.Files)), len(out.Files))
	return nil
}

// staleLocales returns the entries of present that are not in declared.
func staleLocales(present, declared []string) []string {
	known := make(map[string]bool, len(declared))
	for _, l := range declared {
		known[l] = true
	}
	var stale []string
	for _, l := range present {
		if !known[l] {
			stale = append(stale, l)
		}
	}
	return stale
}

// ---------------------------------------------------------------------------
// status (read-only: per-locale completeness)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var pf projectFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: i18n.T("Show project settings and translation statistics"),
		Long: i18n.T(`Show the resolved project settings and the per-locale completeness of
the YAML translation document. Does not modify any files.`),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := pf.project(cmd.Flags(), "input")
			if err != nil {
				return err
			}
			return runStatus(proj)
		},
	}

	pf.register(cmd.Flags(), "input", "i")

	return cmd
}

func runStatus(proj *config.Project) error {
	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Project"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintf(os.Stderr, "  Root:       %s\n", proj.Root)
	if proj.ConfigFile != "" {
		fmt.Fprintf(os.Stderr, "  Config:     %s\n", proj.ConfigFile)
	}
	fmt.Fprintf(os.Stderr, "  Resources:  %s\n", proj.Resources)
	fmt.Fprintf(os.Stderr, "  Document:   %s\n", proj.Document)
	fmt.Fprintf(os.Stderr, "  Android:    %s\n", proj.AndroidRes)
	fmt.Fprintf(os.Stderr, "  Base:       %s\n", proj.BaseLocale)
	fmt.Fprintln(os.Stderr)

	if !fileExists(proj.Document) {
		logInfo("%s", i18n.T("No translation document found. Run 'i18n-sync extract' first."))
		return nil
	}
	doc, err := loadDocument(proj)
	if err != nil {
		return err
	}

	stats := localeStats(doc)
	locales := doc.OrderedLocales()
	width := langColumnWidth(locales)
	fmt.Fprintf(os.Stderr, "%s%s%s\n", colorBlue, i18n.T("Translations"), colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	for _, l := range locales {
		s := stats[l]
		fmt.Fprintf(os.Stderr, "  %s  %s  %d/%d  %s\n",
			langCell(l, width), progressBar(s.percent(), 20), s.translated, s.total, langmeta.Resolve(l).Name)
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

// localeStat counts translated values of one locale.
type localeStat struct {
	translated int
	total      int
}

func (s localeStat) percent() int {
	if s.total == 0 {
		return 100
	}
	return s.translated * 100 / s.total
}

// localeStats counts, per declared locale, how many keys have a value.
func localeStats(doc *model.Document) map[string]localeStat {
	total := countKeys(doc)
	missing := make(map[string]int)
	for _, m := range extract.Audit(doc).Missing() {
		missing[m.Locale]++
	}
	stats := make(map[string]localeStat)
	for _, l := range doc.Locales() {
		stats[l] = localeStat{translated: total - missing[l], total: total}
	}
	return stats
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// loadDocument reads the YAML document and applies the configured locale
// set. Warnings raised while reading are printed.
func loadDocument(proj *config.Project) (*model.Document, error) {
	doc, report, err := yamldoc.ParseFile(proj.Document, proj.BaseLocale)
	if err != nil {
		return nil, err
	}
	printIssues(report)
	if len(proj.Locales) > 0 {
		doc.SetLocales(proj.Locales)
	}
	return doc, nil
}

// printDiagnostics prints every non-missing diagnostic, then the missing
// translations folded to one line per key.
func printDiagnostics(report *diag.Report) {
	if report == nil {
		return
	}
	printIssues(report)

	groups := report.GroupMissing()
	if len(groups) == 0 {
		logSuccess("%s", i18n.T("All keys present in all languages"))
		return
	}
	logWarning(i18n.N("Missing translations for %d key:", "Missing translations for %d keys:", len(groups)), len(groups))
	for _, g := range groups {
		fmt.Fprintf(os.Stderr, "  %s.%s: %s %s\n", g.Section, g.Key, i18n.T("missing in"), strings.Join(g.Locales, ", "))
	}
}

// printIssues prints errors and warnings other than missing translations.
func printIssues(report *diag.Report) {
	for _, d := range report.Others() {
		if d.Severity() == diag.Error {
			logError("%v", d)
		} else {
			logWarning("%v", d)
		}
	}
}

// countKeys returns the number of keys across all sections and plurals.
func countKeys(doc *model.Document) int {
	n := doc.Plurals.Len()
	for _, sec := range doc.Sections() {
		n += sec.Len()
	}
	return n
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// progressBar renders percent as a colored bar of width cells followed by
// the right-aligned percentage.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent == 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	return color + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + colorReset + fmt.Sprintf(" %3d%%", percent)
}

// langColumnWidth returns the width of the longest locale identifier.
func langColumnWidth(locales []string) int {
	width := 0
	for _, l := range locales {
		if len(l) > width {
			width = len(l)
		}
	}
	return width
}

// langCell renders a locale with its flag, padded to width.
func langCell(locale string, width int) string {
	flag := langmeta.Resolve(locale).Flag
	if flag == "" {
		flag = "  "
	}
	return flag + " " + locale + strings.Repeat(" ", width-len(locale))
}
