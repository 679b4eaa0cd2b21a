package resources

import (
	"context"
	"fmt"
	"sync"

	"github.com/npillmayer/glyphset/core"
	"github.com/npillmayer/glyphset/core/font"
	"github.com/npillmayer/schuko"
)

// NotFound returns an application error for a missing font resource.
func NotFound(res string) error {
	e := fmt.Errorf("resource missing: %v", res)
	return core.WrapError(e, core.EMISSING, "font not found: %s", res)
}

type dbPlusErr struct {
	db  *Database
	err error
}

// DatabasePromise is returned by ResolveDatabase. Database blocks until the
// font database has been built.
type DatabasePromise interface {
	Database() (*Database, error)
	Await(ctx context.Context) (*Database, error)
}

type dbLoader struct {
	await func(ctx context.Context) (*Database, error)
}

func (loader dbLoader) Database() (*Database, error) {
	return loader.await(context.Background())
}

func (loader dbLoader) Await(ctx context.Context) (*Database, error) {
	return loader.await(ctx)
}

// ResolveDatabase builds a font database in the background.
//
// If configuration key 'fontconfig' is set, fonts are taken from the output
// of fc-list. Otherwise (or if running fc-list fails) the platform's font
// directories are scanned. The default family is taken from configuration key
// 'default-family'. The database always contains the embedded Go font.
func ResolveDatabase(conf schuko.Configuration) DatabasePromise {
	ch := make(chan dbPlusErr, 1)
	go func(ch chan<- dbPlusErr) {
		defer close(ch)
		var descs []font.Descriptor
		var err error
		if conf.IsSet("fontconfig") {
			if descs, err = loadFontConfigList(conf); err != nil {
				tracer().Errorf("cannot use fontconfig font list: %v", err)
			}
		}
		if len(descs) == 0 {
			descs = scanSystemFonts()
		}
		ch <- dbPlusErr{db: NewDatabase(descs, conf.GetString("default-family"))}
	}(ch)
	var mx sync.Mutex
	var result *dbPlusErr
	return dbLoader{
		await: func(ctx context.Context) (*Database, error) {
			mx.Lock()
			defer mx.Unlock()
			if result != nil {
				return result.db, result.err
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case r := <-ch:
				result = &r
				return r.db, r.err
			}
		},
	}
}
