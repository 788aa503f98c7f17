package pixelmap

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Parse reads a pipeline description: mapper names separated by ';', each
// optionally followed by ':' and a parameter.
//
//	Identity
//	Mirror:H | Mirror:V
//	Rotate:<degrees>
//	U-mapper
//	ChainLink[:<chains>]
//
// chain and parallel are the configured chain length and number of parallel
// chains; U-mapper uses both and ChainLink defaults to parallel chains.
func Parse(desc string, chain, parallel int) (Pipeline, error) {
	var p Pipeline
	for _, part := range strings.Split(desc, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, param, hasParam := strings.Cut(part, ":")
		name = strings.TrimSpace(name)
		param = strings.TrimSpace(param)

		switch strings.ToLower(name) {
		case "identity":
			p = append(p, Identity())

		case "mirror":
			switch strings.ToUpper(param) {
			case "H":
				p = append(p, Mirror(true))
			case "V":
				p = append(p, Mirror(false))
			case "":
				return nil, errors.Wrap(ErrInvalidMapper, "Mirror needs H or V")
			default:
				return nil, errors.Wrapf(ErrInvalidMapper, "Mirror parameter %q is not H or V", param)
			}

		case "rotate":
			angle, err := strconv.Atoi(param)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidMapper, "Rotate angle %q", param)
			}
			if angle%90 != 0 {
				return nil, errors.Wrapf(ErrInvalidMapper, "Rotate angle %d is not a multiple of 90", angle)
			}
			p = append(p, Rotate(normalizeAngle(angle)))

		case "u-mapper", "umapper":
			p = append(p, UArrange(chain, parallel))

		case "chainlink":
			chains := parallel
			if hasParam {
				n, err := strconv.Atoi(param)
				if err != nil {
					return nil, errors.Wrapf(ErrInvalidMapper, "ChainLink chains %q", param)
				}
				chains = n
			}
			p = append(p, ChainLink(chains))

		default:
			return nil, errors.Wrapf(ErrInvalidMapper, "unknown mapper %q", name)
		}
	}
	return p, nil
}

// String renders the pipeline in the form Parse reads, except for
// multiplexing stages which are configured separately.
func (p Pipeline) String() string {
	parts := make([]string, 0, len(p))
	for _, m := range p {
		switch m.Kind {
		case KindUArrange:
			parts = append(parts, "U-mapper")
		default:
			parts = append(parts, m.String())
		}
	}
	return strings.Join(parts, ";")
}
