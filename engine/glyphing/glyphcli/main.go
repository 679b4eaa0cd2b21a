package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/npillmayer/glyphset/core/font/fontregistry"
	"github.com/npillmayer/glyphset/core/locate/resources"
	"github.com/npillmayer/glyphset/core/parameters"
	"github.com/npillmayer/glyphset/engine/glyphing"
	"github.com/npillmayer/glyphset/engine/glyphing/glyphstore"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"golang.org/x/exp/slices"
)

// tracer traces with key 'glyphset.glyphs'
func tracer() tracing.Trace {
	return tracing.Select("glyphset.glyphs")
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fcbin := flag.String("fontconfig", "", "Absolute path of fc-list (optional)")
	family := flag.String("default-family", "", "Family of the default font")
	subpixel := flag.Int("subpixel", -1, "Sub-pixel bits for outline fonts (default from configuration)")
	reqsize := flag.Int("request", 1<<16, "Maximum size of an upload request in bytes")
	flag.Parse()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":       "go",
		"trace.glyphset.glyphs": *tlevel,
		"trace.glyphset.fonts":  *tlevel,
		"app-key":               "glyphset",
		"default-family":        *family,
	}
	if *fcbin != "" {
		conf["fontconfig"] = *fcbin
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	pterm.Info.Println("Welcome to the glyph set CLI")

	// collect fonts in the background while we set up the REPL
	promise := resources.ResolveDatabase(conf)
	registry := fontregistry.NewRegistry()
	registry.Init()
	defer registry.Teardown()

	regs := parameters.FromConfig(conf)
	intp := &Intp{
		store:       glyphstore.NewMemStore(),
		subpixel:    *subpixel,
		requestSize: *reqsize,
	}
	if intp.subpixel < 0 {
		intp.subpixel = regs.N(parameters.P_SUBPIXELBITS)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := promise.Await(ctx)
	cancel()
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(2)
	}
	intp.db = db
	intp.matcher = glyphing.NewMatcher(db, glyphing.RegistryOpener{Registry: registry}, intp.store,
		glyphing.WithRegisters(regs))
	pterm.Printfln("%d font families, default is %s", len(db.Families()), db.DefaultFamily())

	repl, err := readline.NewEx(&readline.Config{
		Prompt:       "glyphs > ",
		AutoComplete: intp.completer(),
	})
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	intp.repl = repl
	pterm.Info.Println("Quit with <ctrl>D")
	intp.REPL()
	if intp.handle != nil {
		intp.handle.Close()
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	repl        *readline.Instance
	db          *resources.Database
	matcher     *glyphing.Matcher
	store       *glyphstore.MemStore
	handle      *glyphing.Handle
	subpixel    int
	requestSize int
}

func (intp *Intp) completer() readline.AutoCompleter {
	families := func(line string) []string {
		arg := strings.TrimSpace(strings.TrimPrefix(line, "match"))
		if i := strings.LastIndexByte(arg, ','); i >= 0 {
			arg = strings.TrimSpace(arg[i+1:])
		}
		return intp.db.Suggest(arg)
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("match", readline.PcItemDynamic(families)),
		readline.PcItem("info"),
		readline.PcItem("upload"),
		readline.PcItem("uploaded"),
		readline.PcItem("families"),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		quit, err := intp.execute(strings.ToLower(cmd), strings.TrimSpace(arg))
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

func (intp *Intp) execute(cmd, arg string) (bool, error) {
	switch cmd {
	case "quit":
		return true, nil
	case "match":
		return false, intp.match(arg)
	case "info":
		return false, intp.info()
	case "upload":
		return false, intp.upload(arg)
	case "uploaded":
		return false, intp.uploaded()
	case "families":
		for _, f := range intp.db.Suggest(arg) {
			pterm.Println(f)
		}
	default:
		help()
	}
	return false, nil
}

func (intp *Intp) match(patterns string) error {
	h, err := intp.matcher.Match(intp.subpixel, patterns)
	if err != nil {
		return err
	}
	if intp.handle != nil {
		intp.handle.Close()
	}
	intp.handle = h
	return intp.info()
}

func (intp *Intp) checkHandle() error {
	if intp.handle == nil {
		return fmt.Errorf("no font selected, use 'match <patterns>'")
	}
	return nil
}

func (intp *Intp) info() error {
	if err := intp.checkHandle(); err != nil {
		return err
	}
	h := intp.handle
	primary, mask, hasMask := h.StoreIDs()
	stores := fmt.Sprintf("%d", primary)
	if hasMask {
		stores = fmt.Sprintf("%d + mask %d", primary, mask)
	}
	data := pterm.TableData{
		{"Property", "Value"},
		{"family", h.Family()},
		{"mode", h.Mode().String()},
		{"pixel size", fmt.Sprintf("%.2f", h.PixelSize())},
		{"strike size", fmt.Sprintf("%.2f", h.StrikeSize())},
		{"sub-pixel phases", fmt.Sprintf("%d", h.Phases())},
		{"max glyph id", fmt.Sprintf("%#x", h.MaxID())},
		{"max width", h.MaxWidth().String()},
		{"max height", h.MaxHeight().String()},
		{"baseline", h.Baseline().String()},
		{"line space", fmt.Sprintf("%d", h.LineSpace())},
		{"glyph stores", stores},
		{"uploaded", fmt.Sprintf("%d", h.UploadedCount())},
		{"store error", fmt.Sprintf("%v", h.HasError())},
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// upload uploads the glyphs for the characters of text, in every sub-pixel
// phase.
func (intp *Intp) upload(text string) error {
	if err := intp.checkHandle(); err != nil {
		return err
	}
	h := intp.handle
	var ids []glyphing.GlyphID
	for _, r := range text {
		gid := h.GlyphIndex(r)
		for phase := 0; phase < h.Phases(); phase++ {
			ids = append(ids, h.Compose(gid, phase))
		}
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)
	n, err := h.Upload(ids, intp.requestSize)
	pterm.Printfln("uploaded %d of %d glyphs, %d requests so far", n, len(ids), len(intp.addCalls()))
	return err
}

func (intp *Intp) addCalls() []glyphstore.Call {
	primary, _, _ := intp.handle.StoreIDs()
	return intp.store.AddCalls(primary)
}

func (intp *Intp) uploaded() error {
	if err := intp.checkHandle(); err != nil {
		return err
	}
	data := pterm.TableData{{"ID", "Glyph", "Phase", "Size", "Bearing"}}
	primary, _, _ := intp.handle.StoreIDs()
	for _, id := range intp.handle.UploadedIDs() {
		gid, phase := intp.handle.Decompose(id)
		g, ok := intp.store.Glyph(primary, uint32(id))
		if !ok {
			continue
		}
		data = append(data, []string{
			fmt.Sprintf("%#x", id),
			fmt.Sprintf("%d", gid),
			fmt.Sprintf("%d", phase),
			fmt.Sprintf("%dx%d", g.Info.Width, g.Info.Height),
			fmt.Sprintf("%d,%d", g.Info.X, g.Info.Y),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func help() {
	pterm.Info.Println("Commands")
	pterm.Println(`
	match <patterns>   select the first matching font, e.g. 'match DejaVu Sans-12, monospace'
	info               show metrics of the selected font
	upload <text>      upload the glyphs of text in every sub-pixel phase
	uploaded           list the glyphs uploaded so far
	families [prefix]  list font families
	quit               leave the CLI
	`)
}
