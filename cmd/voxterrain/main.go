package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"voxterrain/internal/config"
	"voxterrain/internal/game"
	"voxterrain/internal/meshing"
	"voxterrain/internal/preview"
	"voxterrain/internal/store"
	"voxterrain/internal/terrain"
	"voxterrain/internal/voxel"
	"voxterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (defaults are used when empty)")
		ticks      = flag.Int("ticks", -1, "number of ticks to run, overrides session.ticks; 0 runs until interrupted")
		objPath    = flag.String("obj", "", "write the active meshes to this OBJ file after the run")
		slicePath  = flag.String("slice", "", "write a density cross-section through the final target to this TIFF file")
		sliceAxis  = flag.String("slice-axis", "z", "normal of the cross-section: x, y or z")
		sliceSize  = flag.Float64("slice-extent", 96, "world units covered by the cross-section")
	)
	flag.Parse()
	defer closer.Close()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			closer.Fatalln(err)
		}
	}
	if *ticks >= 0 {
		cfg.Session.Ticks = *ticks
	}
	axis, err := preview.ParseAxis(*sliceAxis)
	if err != nil {
		closer.Fatalln(err)
	}

	st, err := openStore(cfg.Store)
	if err != nil {
		closer.Fatalln(err)
	}
	closer.Bind(func() {
		if err := st.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	})

	genSettings, err := cfg.GeneratorSettings()
	if err != nil {
		closer.Fatalln(err)
	}
	gen, err := terrain.New(genSettings)
	if err != nil {
		closer.Fatalln(err)
	}

	stream := cfg.StreamSettings()
	mesher := meshing.NewMesher(nil)
	if cfg.Stream.CapacityFactor > 0 {
		mesher.CapacityFactor = cfg.Stream.CapacityFactor
	}
	v, err := world.NewVolume(world.Options{
		Layout:      cfg.Layout(),
		IsoLevel:    cfg.World.IsoLevel,
		MinBound:    voxel.FromArray(cfg.World.MinChunkBound),
		MaxBound:    voxel.FromArray(cfg.World.MaxChunkBound),
		Stream:      stream,
		Generator:   gen,
		Mesher:      mesher,
		MeshWorkers: cfg.Stream.MeshWorkers,
		Store:       st,
	})
	if err != nil {
		closer.Fatalln(err)
	}
	closer.Bind(v.Close)

	session, err := game.NewSession(v, cfg, stream)
	if err != nil {
		closer.Fatalln(err)
	}

	// On a signal closer runs the bound cleanups; this one stops the session
	// and waits for it to finish its final flush before the volume and store
	// are closed.
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	closer.Bind(func() {
		cancel()
		<-done
	})

	log.Printf("Running %s terrain, load distance %d, store %s",
		cfg.Generator.Kind, stream.LoadDistance(), cfg.Store.Driver)
	stats, err := session.Run(ctx, cfg.Session.Ticks)
	if err == nil {
		log.Printf("Ran %d ticks: %d meshes, %d triangles (%d dropped), %d edits (%d missed), %d chunks flushed",
			stats.Ticks, stats.Meshed, stats.Triangles, stats.Dropped, stats.Edits, stats.Missed, stats.Flushed)
		err = export(v, session.Target.At(max(session.Tick()-1, 0)), *objPath, *slicePath, axis, float32(*sliceSize))
	}
	close(done)
	if err != nil {
		closer.Fatalln(err)
	}
}

func openStore(c config.StoreConfig) (store.Store, error) {
	switch c.Driver {
	case "sqlite":
		return store.OpenSQLite(c.Path)
	case "memory", "":
		return store.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", c.Driver)
}

func export(v *world.Volume, target mgl32.Vec3, objPath, slicePath string, axis preview.Axis, extent float32) error {
	if objPath != "" {
		coords, meshes := v.ActiveMeshes()
		names := make([]string, len(coords))
		for i, c := range coords {
			names[i] = fmt.Sprintf("chunk_%d_%d_%d", c.X, c.Y, c.Z)
		}
		if err := writeFile(objPath, func(f *os.File) error {
			return meshing.WriteOBJ(f, names, meshes...)
		}); err != nil {
			return fmt.Errorf("write obj: %w", err)
		}
		log.Printf("Wrote %d chunk meshes to %s", len(meshes), objPath)
	}
	if slicePath != "" {
		img := preview.RenderSlice(v, preview.SliceOptions{
			Axis:   axis,
			Center: target,
			Extent: extent,
			Pixels: 256,
			Scale:  2,
			Iso:    v.IsoLevel(),
			Label:  true,
		})
		if err := writeFile(slicePath, func(f *os.File) error {
			return preview.WriteTIFF(f, img)
		}); err != nil {
			return fmt.Errorf("write slice: %w", err)
		}
		log.Printf("Wrote %s slice through %v to %s", axis, target, slicePath)
	}
	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
