package pricing

import "errors"

type Arrangement string

const (
	ArrangementSolo  Arrangement = "Solo"
	ArrangementDupla Arrangement = "Dupla"
	ArrangementTrio  Arrangement = "Trio"
	ArrangementTeste Arrangement = "Teste" // diagnostic entry, kept out of the storefront UI
)

// ImageMode selects how uploaded images populate the frames of a
// multi-frame arrangement. It never affects price.
type ImageMode string

const (
	ImageModeGlobal     ImageMode = "global"     // one image repeated across all frames
	ImageModeSplit      ImageMode = "split"      // one image cropped per frame position
	ImageModeIndividual ImageMode = "individual" // independent image per frame
)

var (
	ErrUnknownArrangement = errors.New("unknown arrangement")
	ErrUnknownSize        = errors.New("unknown size for arrangement")
	ErrUnknownImageMode   = errors.New("unknown image mode")
	ErrImageCountMismatch = errors.New("image count does not match selected mode")
)

func (a Arrangement) FrameCount() int {
	switch a {
	case ArrangementDupla:
		return 2
	case ArrangementTrio:
		return 3
	case ArrangementSolo, ArrangementTeste:
		return 1
	}
	return 0
}

func (a Arrangement) Valid() bool {
	return a.FrameCount() > 0
}

func (a Arrangement) String() string {
	return string(a)
}

// RequiredImages returns how many uploaded images the given mode needs
// before an item for this arrangement may enter the cart.
func RequiredImages(mode ImageMode, arrangement Arrangement) (int, error) {
	if !arrangement.Valid() {
		return 0, ErrUnknownArrangement
	}
	switch mode {
	case ImageModeGlobal, ImageModeSplit:
		return 1, nil
	case ImageModeIndividual:
		return arrangement.FrameCount(), nil
	}
	return 0, ErrUnknownImageMode
}

// ValidateImages rejects a configuration whose uploaded image count does
// not match the selected mode exactly.
func ValidateImages(mode ImageMode, arrangement Arrangement, uploaded int) error {
	required, err := RequiredImages(mode, arrangement)
	if err != nil {
		return err
	}
	if uploaded != required {
		return ErrImageCountMismatch
	}
	return nil
}
