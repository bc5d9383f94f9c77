package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"plume/internal/diag"
	"plume/internal/plugin"
	"plume/internal/source"
)

// SourceExt is the Plume source file extension.
const SourceExt = ".plm"

// FileResult содержит результат компиляции одного файла
type FileResult struct {
	Path   string        // Относительный путь к файлу
	FileID source.FileID // ID файла в FileSet
	Result *Result       // Полный результат компиляции
}

// listPlumeFiles возвращает отсортированный список всех *.plm файлов в директории
func listPlumeFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, SourceExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// CompileDir компилирует все *.plm файлы в директории параллельно.
//
// Files are loaded into the shared FileSet serially up front; the set is
// read-only afterwards, so the workers need no locking. Every file gets
// its own registry, context and bag — only the options are shared, which
// means a shared Progress sink must tolerate concurrent events and Timer
// is ignored in this mode.
func CompileDir(ctx context.Context, dir string, opts Options, jobs int) (*source.FileSet, []FileResult, error) {
	files, err := listPlumeFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = id
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	opts.Timer = nil

	// Индексы уникальны для каждой горутины, мьютекс не нужен.
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			if loadErr, hadError := loadErrors[path]; hadError {
				maxDiag := opts.MaxDiagnostics
				if maxDiag <= 0 {
					maxDiag = DefaultMaxDiagnostics
				}
				bag := diag.NewBag(maxDiag)
				bag.Error("cannot read file: "+loadErr.Error(), "driver", source.Span{})
				results[i] = FileResult{Path: path, Result: &Result{Context: plugin.NewContext(), Bag: bag}}
				return nil
			}

			id := fileIDs[path]
			res, err := Compile(gctx, fileSet, id, opts)
			if err != nil {
				return err
			}
			results[i] = FileResult{Path: path, FileID: id, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
