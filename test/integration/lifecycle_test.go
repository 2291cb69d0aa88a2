// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Plugspace Contributors

//go:build integration

// Package integration provides end-to-end integration tests for plugspace.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/plugspace/plugspace/pkg/entrypoint"
	"github.com/plugspace/plugspace/pkg/lifecycle"
	"github.com/plugspace/plugspace/pkg/loader"
	pluginlua "github.com/plugspace/plugspace/pkg/loader/lua"
	"github.com/plugspace/plugspace/pkg/plugin"
)

// testEnv holds the on-disk and in-process fixtures one spec works with.
type testEnv struct {
	pathEntry string
	cacheDir  string
	registry  *loader.Registry
}

func newTestEnv() *testEnv {
	return &testEnv{
		pathEntry: GinkgoT().TempDir(),
		cacheDir:  GinkgoT().TempDir(),
		registry:  loader.NewRegistry(),
	}
}

// writeDistribution creates a dist-info directory declaring entry points.
func (env *testEnv) writeDistribution(name, declarations string) {
	metaDir := filepath.Join(env.pathEntry, name+".dist-info")
	Expect(os.MkdirAll(metaDir, 0o750)).To(Succeed())
	Expect(os.WriteFile(
		filepath.Join(metaDir, "entry_points.txt"),
		[]byte(declarations), 0o600,
	)).To(Succeed())
}

func (env *testEnv) newCache() *lifecycle.EntryPointCache {
	return lifecycle.NewEntryPointCache(
		lifecycle.WithSearchPath(func() []string { return []string{env.pathEntry} }),
		lifecycle.WithCacheDir(env.cacheDir),
	)
}

func (env *testEnv) newManager(namespace string, opts ...lifecycle.Option[plugin.Plugin]) *lifecycle.Manager[plugin.Plugin] {
	finder := lifecycle.NewMetadataFinder(namespace, nil,
		lifecycle.WithEntryPointSource(env.newCache()),
		lifecycle.WithCodeLoader(env.registry),
	)
	opts = append(opts, lifecycle.WithFinder[plugin.Plugin](finder))
	return lifecycle.NewManager[plugin.Plugin](namespace, opts...)
}

var _ = Describe("Plugin lifecycle", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv()
	})

	Describe("metadata-driven discovery", func() {
		BeforeEach(func() {
			builder := plugin.NewFunctionPluginBuilder("app.greeters",
				plugin.WithRegistry(env.registry, "app/greeters"))
			builder.Register(func(_ context.Context, args ...any) (any, error) {
				return "hello", nil
			}, plugin.WithName("hello"))

			env.writeDistribution("greeters-1.0.0", `[app.greeters]
hello = app/greeters:hello
`)
		})

		It("loads a plugin declared by an installed distribution", func(ctx SpecContext) {
			m := env.newManager("app.greeters")

			p, err := m.Load(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Name()).To(Equal("hello"))

			loaded, err := m.IsLoaded("hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeTrue())
		})

		It("serves a second manager from the on-disk cache", func(ctx SpecContext) {
			first := env.newManager("app.greeters")
			_, err := first.LoadAll(ctx, true)
			Expect(err).NotTo(HaveOccurred())

			// Remove the metadata directory; only the cache file remains.
			Expect(os.RemoveAll(filepath.Join(env.pathEntry, "greeters-1.0.0.dist-info"))).To(Succeed())
			files, err := filepath.Glob(filepath.Join(env.cacheDir, "*.entry_points.txt"))
			Expect(err).NotTo(HaveOccurred())
			Expect(files).To(HaveLen(1))

			stale := env.newCache()
			index, err := stale.EntryPoints()
			Expect(err).NotTo(HaveOccurred())

			// The hash covers the removed declaration file, so the stale
			// cache entry is keyed away and the scan comes back empty.
			Expect(index).To(BeEmpty())
		})

		It("survives concurrent loads with a single invocation", func(ctx SpecContext) {
			m := env.newManager("app.greeters")

			var wg sync.WaitGroup
			for range 10 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					_, err := m.Load(ctx, "hello")
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			wg.Wait()

			containers, err := m.ListContainers()
			Expect(err).NotTo(HaveOccurred())
			Expect(containers).To(HaveLen(1))
			Expect(containers[0].IsLoaded()).To(BeTrue())
		})
	})

	Describe("filters", func() {
		It("disables matching plugins before initialization", func(ctx SpecContext) {
			builder := plugin.NewFunctionPluginBuilder("app.workers",
				plugin.WithRegistry(env.registry, "app/workers"))
			builder.Register(func(context.Context, ...any) (any, error) { return nil, nil },
				plugin.WithName("keep"))
			builder.Register(func(context.Context, ...any) (any, error) { return nil, nil },
				plugin.WithName("drop"))

			env.writeDistribution("workers-1.0.0", `[app.workers]
keep = app/workers:keep
drop = app/workers:drop
`)

			filter := lifecycle.NewMatchingFilter()
			Expect(filter.AddExclusion(lifecycle.ExclusionPattern{
				Namespace: "app.workers",
				Name:      "drop",
			})).To(Succeed())

			m := env.newManager("app.workers", lifecycle.WithFilters[plugin.Plugin](filter))

			loaded, err := m.LoadAll(ctx, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(HaveLen(1))
			Expect(loaded[0].Name()).To(Equal("keep"))

			c, err := m.GetContainer("drop")
			Expect(err).NotTo(HaveOccurred())
			Expect(c.IsDisabled()).To(BeTrue())
		})
	})

	Describe("lua plugins", func() {
		It("discovers and runs a plugin written as a lua script", func(ctx SpecContext) {
			scriptDir := GinkgoT().TempDir()
			script := filepath.Join(scriptDir, "shout.lua")
			Expect(os.WriteFile(script, []byte(`
namespace = "app.greeters"
name = "shout"

function run(who)
  return string.upper(who)
end
`), 0o600)).To(Succeed())

			env.writeDistribution("luaplugins-0.1.0", "[app.greeters]\nshout = "+script+"\n")

			finder := lifecycle.NewMetadataFinder("app.greeters", nil,
				lifecycle.WithEntryPointSource(env.newCache()),
				lifecycle.WithCodeLoader(pluginlua.NewLoader()),
			)
			m := lifecycle.NewManager[plugin.Plugin]("app.greeters",
				lifecycle.WithFinder[plugin.Plugin](finder))

			p, err := m.Load(ctx, "shout")
			Expect(err).NotTo(HaveOccurred())

			fn, ok := p.(*plugin.FunctionPlugin)
			Expect(ok).To(BeTrue())

			result, err := fn.Call(ctx, "quiet")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal("QUIET"))
		})
	})

	Describe("round-tripping declarations", func() {
		It("regenerates the metadata a finder discovered", func() {
			builder := plugin.NewFunctionPluginBuilder("app.greeters",
				plugin.WithRegistry(env.registry, "app/greeters"))
			builder.Register(func(context.Context, ...any) (any, error) { return nil, nil },
				plugin.WithName("hello"))

			finder := plugin.NewModuleScanningFinder(env.registry)
			mapping, err := plugin.DiscoverEntryPoints(finder)
			Expect(err).NotTo(HaveOccurred())

			eps, err := mapping.EntryPoints()
			Expect(err).NotTo(HaveOccurred())

			serialized := entrypoint.SerializeIndex(entrypoint.BuildIndex(eps))
			parsed, err := entrypoint.ParseText(serialized)
			Expect(err).NotTo(HaveOccurred())

			roundTripped, err := entrypoint.ToMapping(parsed)
			Expect(err).NotTo(HaveOccurred())
			Expect(roundTripped).To(Equal(mapping))
		})
	})
})
