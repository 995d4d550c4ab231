package brotlic

// Quality, window and block limits per RFC 7932 and the reference encoder.
const (
	MinQuality     = 0
	MaxQuality     = 11
	DefaultQuality = 11

	MinWindowBits     = 10
	MaxWindowBits     = 24
	DefaultWindowBits = 22

	MinBlockBits = 16
	MaxBlockBits = 24
)

// Unset fields keep the engine defaults. Set-ness is tracked explicitly so
// that every explicitly chosen value is validated, whatever its value.
type encoderConfig struct {
	quality    int
	windowBits int
	blockBits  int

	qualitySet bool
	windowSet  bool
	blockSet   bool
}

func defaultEncoderConfig() encoderConfig {
	return encoderConfig{}
}

func (c encoderConfig) validate() error {
	if c.qualitySet && (c.quality < MinQuality || c.quality > MaxQuality) {
		return &ParameterError{Param: "quality", Value: c.quality, Min: MinQuality, Max: MaxQuality}
	}
	if c.windowSet && (c.windowBits < MinWindowBits || c.windowBits > MaxWindowBits) {
		return &ParameterError{Param: "window bits", Value: c.windowBits, Min: MinWindowBits, Max: MaxWindowBits}
	}
	if c.blockSet && (c.blockBits < MinBlockBits || c.blockBits > MaxBlockBits) {
		return &ParameterError{Param: "block bits", Value: c.blockBits, Min: MinBlockBits, Max: MaxBlockBits}
	}
	return nil
}

// EncoderOption configures compression behavior.
type EncoderOption interface {
	applyEncoder(*encoderConfig)
}

type encoderOptFunc func(*encoderConfig)

func (f encoderOptFunc) applyEncoder(c *encoderConfig) { f(c) }

// WithQuality sets the compression quality, the speed versus density
// trade-off. Valid levels range from 0 (fastest) to 11 (densest, the
// default).
func WithQuality(level int) EncoderOption {
	return encoderOptFunc(func(c *encoderConfig) {
		c.quality = level
		c.qualitySet = true
	})
}

// WithWindowBits sets the LZ77 sliding window size as a power of two.
// Valid values range from 10 (1 KiB) to 24 (16 MiB); the default is 22.
// Larger windows improve density on large inputs at the cost of memory on
// both ends of the stream.
func WithWindowBits(bits int) EncoderOption {
	return encoderOptFunc(func(c *encoderConfig) {
		c.windowBits = bits
		c.windowSet = true
	})
}

// WithBlockBits caps the encoder input block size as a power of two.
// Valid values range from 16 (64 KiB) to 24 (16 MiB). When unset the
// encoder picks a block size itself.
func WithBlockBits(bits int) EncoderOption {
	return encoderOptFunc(func(c *encoderConfig) {
		c.blockBits = bits
		c.blockSet = true
	})
}

type decoderConfig struct {
	windowBits int
	windowSet  bool
}

func defaultDecoderConfig() decoderConfig {
	return decoderConfig{}
}

func (c decoderConfig) validate() error {
	if c.windowSet && (c.windowBits < MinWindowBits || c.windowBits > MaxWindowBits) {
		return &ParameterError{Param: "window bits", Value: c.windowBits, Min: MinWindowBits, Max: MaxWindowBits}
	}
	return nil
}

// pullSize returns the source read buffer size implied by the window hint.
func (c decoderConfig) pullSize() int {
	if !c.windowSet {
		return defaultBufSize
	}
	n := 1 << c.windowBits
	if n > maxBufSize {
		return maxBufSize
	}
	return n
}

// DecoderOption configures decompression behavior.
type DecoderOption interface {
	applyDecoder(*decoderConfig)
}

type decoderOptFunc func(*decoderConfig)

func (f decoderOptFunc) applyDecoder(c *decoderConfig) { f(c) }

// WithWindowBitsHint tells the decoder how large a window the producing
// encoder used, sizing internal buffers accordingly. Valid values range
// from 10 to 24. The hint never affects correctness; streams produced with
// any window size decode regardless.
func WithWindowBitsHint(bits int) DecoderOption {
	return decoderOptFunc(func(c *decoderConfig) {
		c.windowBits = bits
		c.windowSet = true
	})
}

// NewEncoderEngine builds a brotli compression engine from the given
// options. With no options the engine uses quality 11 and a 22-bit window.
func NewEncoderEngine(opts ...EncoderOption) (Engine, error) {
	cfg := defaultEncoderConfig()
	for _, opt := range opts {
		opt.applyEncoder(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return newEncoderEngine(cfg), nil
}

// NewDecoderEngine builds a brotli decompression engine from the given
// options.
func NewDecoderEngine(opts ...DecoderOption) (Engine, error) {
	cfg := defaultDecoderConfig()
	for _, opt := range opts {
		opt.applyDecoder(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return newDecoderEngine(), nil
}
