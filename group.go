package terasort

import (
	"context"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/faramir/terasort/errors"
	"github.com/faramir/terasort/internal/cluster"
	"github.com/faramir/terasort/internal/recordio"
)

// Group is a set of cooperating peers that together sort one input file
// (spec §2, §9). Every peer runs as a goroutine sharing one process and
// one internal/cluster bus; a real deployment replaces that bus with a
// network transport behind the same Cluster methods, without the
// core sort logic (planner, sampler, classifier, sortpipeline) changing
// at all.
type Group struct {
	peers int
	cfg   *config
	log   io.Writer
}

// NewGroup returns a Group of the given peer count, configured by opts.
// peers must be positive and WithSampleSize must be among opts; there
// is no sane default sample size since it must scale with the input.
func NewGroup(peers int, opts ...Option) (*Group, error) {
	if peers <= 0 {
		return nil, errors.ErrBadArgs
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.sampleSize <= 0 {
		return nil, errors.ErrNoPivotsNeed
	}
	return &Group{peers: peers, cfg: cfg, log: os.Stdout}, nil
}

// WithLog overrides where per-phase progress lines are written (the
// default is os.Stdout). It returns g so it can be chained onto
// NewGroup's result.
func (g *Group) WithLog(w io.Writer) *Group {
	g.log = w
	return g
}

// Run sorts inputPath into outputPath across the configured peer group
// (spec §2). Every peer opens its own read-only RecordReader onto
// inputPath; the configured placement variant decides how outputPath is
// used — a single pre-sized shared file, a directory of
// "<outputPath>-part-NNNNN" files, or a single file written under a
// circulating token.
func (g *Group) Run(ctx context.Context, inputPath, outputPath string) error {
	clusters := cluster.Group(g.peers)

	var shared *recordio.SequentialFile
	if g.cfg.placement == Sequential {
		var err error
		shared, err = recordio.CreateSequentialFile(outputPath, g.peers)
		if err != nil {
			return err
		}
	}

	grp, gctx := errgroup.WithContext(ctx)
	for _, cl := range clusters {
		grp.Go(func() error {
			reader, err := g.openReader(inputPath)
			if err != nil {
				return err
			}
			defer reader.Close()
			return runPeer(gctx, cl, g.cfg, reader, outputPath, shared, g.log)
		})
	}

	if err := grp.Wait(); err != nil {
		_ = clusters[0].Close()
		if shared != nil {
			_ = shared.Close()
		}
		return err
	}
	_ = clusters[0].Close()
	if shared != nil {
		return shared.Close()
	}
	return nil
}

// openReader opens a RecordReader onto inputPath. A plain file is read
// through the windowed mmap reader; a directory is treated as the
// remote-filesystem adapter's input (spec §6: "if input is a directory
// ... the reader enumerates entries whose name begins with part"), read
// back through recordio.OpenRemoteDir instead.
func (g *Group) openReader(inputPath string) (RecordReader, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return recordio.OpenRemoteDir(inputPath, "part*", g.cfg.hdfsConf...)
	}
	return recordio.OpenMmapReader(inputPath, g.cfg.memoryMapElementCount)
}
