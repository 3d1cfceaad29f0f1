package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/zintix-labs/ldslab"
	"github.com/zintix-labs/ldslab/demo/demo_configs"
	"github.com/zintix-labs/ldslab/sdk/core"
	"github.com/zintix-labs/ldslab/spec"
	"github.com/zintix-labs/ldslab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	name      string
	id        spec.GID
	worker    int
	points    int
	streams   int
	seed      uint64
	baseline  bool
	yamlOut   bool
	pprofmode string
}

type gidFlag struct{ p *spec.GID }

func (f gidFlag) String() string { return fmt.Sprint(uint(*f.p)) }
func (f gidFlag) Set(s string) error {
	u, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return err
	}
	*f.p = spec.GID(uint(u))
	return nil
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.Var(gidFlag{&cfg.id}, "gen", "target generator id")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.IntVar(&cfg.points, "points", 1000000, "points per worker")
	flag.IntVar(&cfg.streams, "streams", 1, "independent prng streams for the estimator")
	flag.Uint64Var(&cfg.seed, "seed", 0, "start index of the sequence")
	flag.BoolVar(&cfg.baseline, "baseline", false, "also run a prng baseline with the same geometry")
	flag.BoolVar(&cfg.yamlOut, "yaml", false, "dump the report as yaml instead of the table view")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()
}

// 這裡解析並分支要執行的模擬器
func executeSimulator() {
	cfg.valid() // 基本檢查

	lab, err := ldslab.NewAuto(
		core.Default(),
		ldslab.Configs(demo_configs.FS),
	)
	if err != nil {
		log.Fatal(err)
	}
	s, err := lab.NewSimulatorWithSeed(cfg.id, cfg.seed)
	if err != nil {
		log.Fatal(err)
	}
	ent, _ := lab.EntryById(cfg.id)
	cfg.name = ent.Name
	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)

	var st *stats.UniformReport
	if cfg.worker == 1 { // 單線程
		p.Printf("%s[GEN:%s] [SEED:%d] [POINTS:%d]%s\n", green, cfg.name, cfg.seed, cfg.points, reset)
		report, used, err := s.Sim(cfg.points, true)
		if err != nil {
			log.Fatal(err)
		}
		report.StdOut(used)
		st = report
	} else {
		p.Printf("%s[WORKERS:%d] [GEN:%s] [SEED:%d] [POINTS:%d]%s\n", green, cfg.worker, cfg.name, cfg.seed, cfg.worker*cfg.points, reset)
		report, used, err := s.SimMP(cfg.points, cfg.worker, true) // 併發
		if err != nil {
			log.Fatal(err)
		}
		report.StdOut(used)
		st = report
	}

	if cfg.yamlOut {
		render := &stats.YAMLUniformReportRender{}
		if err := render.Write(os.Stdout, st); err != nil {
			log.Fatal(err)
		}
	}

	// 同幾何映射跑 PRNG 對照組：報表差異即為序列品質差異
	if cfg.baseline {
		p.Printf("%s[BASELINE:prng] [GEN:%s] [POINTS:%d]%s\n", green, cfg.name, cfg.worker*cfg.points, reset)
		base, used, err := s.SimBaseline(cfg.worker*cfg.points, true)
		if err != nil {
			log.Fatal(err)
		}
		base.StdOut(used)
	}

	// 多條獨立 PRNG stream 的區間估計（中位 star disc + bucket share CI）
	if cfg.streams > 1 {
		p.Printf("%s[ESTIMATOR] [STREAMS:%d] [POINTS/STREAM:%d]%s\n", green, cfg.streams, cfg.points, reset)
		sts := make([]*stats.UniformReport, 0, cfg.streams)
		for i := 0; i < cfg.streams; i++ {
			r, _, err := s.SimBaseline(cfg.points, false)
			if err != nil {
				log.Fatal(err)
			}
			sts = append(sts, r)
		}
		est := stats.EstimatorUniformStreams(sts)
		est.Out()
	}
}

func (cfg *config) valid() {
	p := message.NewPrinter(language.English)

	// 工作協程檢查(併發數)
	if cfg.worker < 1 {
		log.Fatal("value err : workers must > 0")
	}

	// 點數檢查
	if cfg.points < 1 {
		log.Fatal("value err : points must > 0")
	}

	// stream 數量檢查
	if cfg.streams < 1 {
		log.Fatal("value err : streams must > 0")
	}
	if cfg.streams > 64 {
		p.Printf("too much streams: %d resized to 64 streams\n", cfg.streams)
		cfg.streams = 64
	}
}
