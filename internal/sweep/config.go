package sweep

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	MinNumSamples = 8192
	MaxLNAGain    = 40
	MaxVGAGain    = 62
	LNAGainStep   = 8
	VGAGainStep   = 2
)

// Config configures the `hackrf_sweep` invocation for a wide-band scan.
// The tool is always run in one-shot mode: the scheduler owns the cadence,
// not the tool.
//
// See `man hackrf_sweep`:
// https://manpages.debian.org/bookworm/hackrf/hackrf_sweep.1.en.html
type Config struct {
	// Required
	FrequencyStart int64 `yaml:"frequencyStart" json:"frequencyStart"` // -f freq_min Frequency range start in Hz
	FrequencyEnd   int64 `yaml:"frequencyEnd" json:"frequencyEnd"`     // -f freq_max Frequency range end in Hz

	// Important but Optional (have reasonable defaults)
	LNAGain    *int  `yaml:"lnaGain" json:"lnaGain"`       // -l gain_db LNA (IF) gain, 0-40dB, 8dB steps
	VGAGain    *int  `yaml:"vgaGain" json:"vgaGain"`       // -g gain_db VGA (baseband) gain, 0-62dB, 2dB steps
	BinWidth   int64 `yaml:"binWidth" json:"binWidth"`     // -w bin_width FFT bin width (frequency resolution) in Hz
	NumSamples int64 `yaml:"numSamples" json:"numSamples"` // -n num_samples Number of samples per frequency, 8192-4294967296

	// Optional
	EnableAmp    bool `yaml:"enableAmp" json:"enableAmp"`       // -a amp_enable RX RF amplifier 1=Enable, 0=Disable
	AntennaPower bool `yaml:"antennaPower" json:"antennaPower"` // -p antenna_enable Antenna port power, 1=Enable, 0=Disable

	// Example invocation:
	// hackrf_sweep -f 400:450 -w 100000 -l 16 -g 20 -1
}

func (c *Config) Validate() error {
	if c.FrequencyStart >= c.FrequencyEnd {
		return errors.New("sweep.Config: frequency end must be greater than frequency start")
	}

	// LNA gain validation (0-40dB in 8dB steps)
	if c.LNAGain != nil {
		if *c.LNAGain < 0 || *c.LNAGain > MaxLNAGain {
			return fmt.Errorf("sweep.Config: LNA gain must be between 0 and 40 dB: %d given", *c.LNAGain)
		}
		if *c.LNAGain%LNAGainStep != 0 {
			return errors.New("sweep.Config: LNA gain must be a multiple of 8 dB")
		}
	}

	// VGA gain validation (0-62dB in 2dB steps)
	if c.VGAGain != nil {
		if *c.VGAGain < 0 || *c.VGAGain > MaxVGAGain {
			return fmt.Errorf("sweep.Config: VGA gain must be between 0 and 62 dB: %d given", *c.VGAGain)
		}
		if *c.VGAGain%VGAGainStep != 0 {
			return errors.New("sweep.Config: VGA gain must be a multiple of 2 dB")
		}
	}

	if c.NumSamples > 0 && c.NumSamples < MinNumSamples {
		return fmt.Errorf("sweep.Config: number of samples must be at least 8192: %d given", c.NumSamples)
	}

	return nil
}

// Args builds the command line arguments for a one-shot `hackrf_sweep` run.
func (c *Config) Args() ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	args := []string{
		"-f", fmt.Sprintf("%d:%d",
			c.FrequencyStart/1e6,
			c.FrequencyEnd/1e6),
	}

	if c.BinWidth > 0 {
		args = append(args, "-w", strconv.FormatInt(c.BinWidth, 10))
	}

	if c.LNAGain != nil {
		args = append(args, "-l", strconv.Itoa(*c.LNAGain))
	}

	if c.VGAGain != nil {
		args = append(args, "-g", strconv.Itoa(*c.VGAGain))
	}

	if c.NumSamples >= MinNumSamples {
		args = append(args, "-n", strconv.FormatInt(c.NumSamples, 10))
	}

	if c.EnableAmp {
		args = append(args, "-a", "1")
	}

	if c.AntennaPower {
		args = append(args, "-p", "1")
	}

	// One shot: a single pass over the range, then exit
	args = append(args, "-1")

	return args, nil
}
