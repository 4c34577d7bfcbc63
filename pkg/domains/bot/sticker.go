package bot

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/sunshineplan/imgconv"
	"go.mau.fi/whatsmeow/proto/waE2E"
)

const stickerSize = 512

var errNoStickerSource = errors.New("no image or video to convert")

// stickerSource finds the image or video a sticker command refers to: the
// media carrying the command as caption, or the quoted message.
func stickerSource(msg *waE2E.Message) (img *waE2E.ImageMessage, video *waE2E.VideoMessage) {
	if msg == nil {
		return nil, nil
	}
	if msg.GetImageMessage() != nil {
		return msg.GetImageMessage(), nil
	}
	if msg.GetVideoMessage() != nil {
		return nil, msg.GetVideoMessage()
	}
	quoted := msg.GetExtendedTextMessage().GetContextInfo().GetQuotedMessage()
	if quoted == nil {
		return nil, nil
	}
	return quoted.GetImageMessage(), quoted.GetVideoMessage()
}

// toSticker scales an image to fit the sticker canvas and encodes it as PNG.
// imgconv decodes webp but cannot encode it, so some clients show the result
// as a plain image.
func toSticker(data []byte) ([]byte, error) {
	img, err := imgconv.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	opt := &imgconv.ResizeOption{Width: stickerSize}
	if b := img.Bounds(); b.Dy() > b.Dx() {
		opt = &imgconv.ResizeOption{Height: stickerSize}
	}

	var out bytes.Buffer
	if err := imgconv.Write(&out, imgconv.Resize(img, opt), &imgconv.FormatOption{Format: imgconv.PNG}); err != nil {
		return nil, fmt.Errorf("encoding sticker: %w", err)
	}
	return out.Bytes(), nil
}
