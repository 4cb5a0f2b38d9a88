package wm

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"
)

func TestConfigureRequestValuesFollowMaskOrder(t *testing.T) {
	ev := xproto.ConfigureRequestEvent{
		X:           -3,
		Y:           7,
		Width:       640,
		Height:      480,
		BorderWidth: 2,
		StackMode:   xproto.StackModeAbove,
	}

	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowWidth | xproto.ConfigWindowStackMode)
	vals := configureRequestValues(ev, mask)
	assert.Equal(t, []uint32{uint32(int32(-3)), 640, uint32(xproto.StackModeAbove)}, vals)

	mask = uint16(xproto.ConfigWindowY | xproto.ConfigWindowHeight | xproto.ConfigWindowBorderWidth)
	vals = configureRequestValues(ev, mask)
	assert.Equal(t, []uint32{7, 480, 2}, vals)
}

func TestConfigureRequestValuesEmptyMask(t *testing.T) {
	assert.Empty(t, configureRequestValues(xproto.ConfigureRequestEvent{}, 0))
}
