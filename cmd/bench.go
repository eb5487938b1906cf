// cmd/bench.go

package main

import (
	"fmt"
	"math/rand"
	"sync"

	"AveRAM/pkg/device"
	"AveRAM/pkg/utils"

	"github.com/juju/ratelimit"
	"github.com/urfave/cli/v2"
	"github.com/vbauerster/mpb/v8"
)

func benchFlags() *cli.Command {
	return &cli.Command{
		Name:   "bench",
		Usage:  "run a concurrent I/O workload against one device and show its statistics",
		Action: bench,
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "size",
				Value: 256,
				Usage: "device size in MiB",
			},
			&cli.IntFlag{
				Name:    "threads",
				Aliases: []string{"p"},
				Value:   4,
				Usage:   "number of concurrent writers",
			},
			&cli.Float64Flag{
				Name:  "zero-ratio",
				Value: 0.1,
				Usage: "fraction of all-zero pages in the workload",
			},
			&cli.StringFlag{
				Name:  "compress",
				Value: "lz4",
				Usage: "compression algorithm (lz4, zstd, none)",
			},
			&cli.Int64Flag{
				Name:  "bwlimit",
				Usage: "limit write bandwidth in MiB/s",
			},
		},
	}
}

// fillPage writes a compressible pattern: a quarter of random bytes,
// repeated to the end of the page.
func fillPage(r *rand.Rand, buf []byte) {
	n := len(buf) / 4
	r.Read(buf[:n])
	for off := n; off < len(buf); off += n {
		copy(buf[off:], buf[:n])
	}
}

func runPhase(bar *mpb.Bar, threads, pages int, io func(cpu, page int) bool) {
	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func(cpu int) {
			defer wg.Done()
			for p := cpu; p < pages; p += threads {
				if !io(cpu, p) {
					return
				}
				bar.Increment()
			}
		}(i)
	}
	wg.Wait()
}

func bench(c *cli.Context) error {
	setLoggerLevel(c)
	conf := device.Config{
		MaxDevices:  1,
		Shards:      c.Int("threads"),
		Compression: c.String("compress"),
	}
	r := device.NewRegistry(conf)
	d := r.Devices()[0]
	bd := d.BlockObject()

	size := c.Uint64("size") << 20
	if _, errno := r.Store(bd, "disksize", fmt.Sprintf("%d", size)); errno != 0 {
		logger.Fatalf("set disksize: %s", errno)
	}
	bd.Open()
	defer bd.Close()

	threads := c.Int("threads")
	pages := int(size) / d.PageSize()
	zeroRatio := c.Float64("zero-ratio")
	var bucket *ratelimit.Bucket
	if bw := c.Int64("bwlimit"); bw > 0 {
		limit := bw << 20
		bucket = ratelimit.NewBucketWithRate(float64(limit), limit)
	}

	progress, wbar := utils.NewDynProgressBar("write: ", c.Bool("quiet"))
	wbar.SetTotal(int64(pages), false)
	bufs := make([][]byte, threads)
	rands := make([]*rand.Rand, threads)
	for i := range bufs {
		bufs[i] = make([]byte, d.PageSize())
		rands[i] = rand.New(rand.NewSource(int64(i)))
	}
	runPhase(wbar, threads, pages, func(cpu, p int) bool {
		buf := bufs[cpu]
		if rands[cpu].Float64() < zeroRatio {
			for i := range buf {
				buf[i] = 0
			}
		} else {
			fillPage(rands[cpu], buf)
		}
		if bucket != nil {
			bucket.Wait(int64(len(buf)))
		}
		if errno := d.WritePage(cpu, p, buf); errno != 0 {
			logger.Errorf("write page %d: %s", p, errno)
			return false
		}
		return true
	})
	progress.Wait()

	progress, rbar := utils.NewDynProgressBar("read: ", c.Bool("quiet"))
	rbar.SetTotal(int64(pages), false)
	runPhase(rbar, threads, pages, func(cpu, p int) bool {
		if errno := d.ReadPage(cpu, p, bufs[cpu]); errno != 0 {
			logger.Errorf("read page %d: %s", p, errno)
			return false
		}
		return true
	})
	progress.Wait()

	for _, name := range device.Attrs() {
		if out, errno := r.Show(bd, name); errno == 0 {
			fmt.Printf("%-16s %s", name, out)
		}
	}
	ru := utils.GetRusage()
	logger.Infof("CPU: %.1fs user, %.1fs sys, peak RSS: %d MiB, off-heap: %d MiB, clock: %s",
		ru.GetUtime(), ru.GetStime(), ru.GetMaxRSS()>>20, utils.AllocMemory()>>20, utils.Clock())
	return nil
}
