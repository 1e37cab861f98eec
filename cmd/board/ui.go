package main

import (
	"bytes"
	"image/color"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

const toolbarHeight = 48

// solidNineSlice returns a solid color *image.NineSlice for widget backgrounds.
func solidNineSlice(c color.Color) *image.NineSlice {
	return image.NewNineSliceColor(c)
}

func loadFace(size float64) text.Face {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		panic("Failed to load font: " + err.Error())
	}
	return &text.GoTextFace{Source: s, Size: size}
}

func newTheme(fontFace *text.Face) *widget.Theme {
	return &widget.Theme{
		PanelTheme: &widget.PanelParams{
			BackgroundImage: solidNineSlice(color.RGBA{40, 40, 40, 255}),
		},
		ButtonTheme: &widget.ButtonParams{
			Image: &widget.ButtonImage{
				Idle:    solidNineSlice(color.RGBA{180, 180, 180, 255}),
				Hover:   solidNineSlice(color.RGBA{200, 200, 200, 255}),
				Pressed: solidNineSlice(color.RGBA{160, 160, 160, 255}),
			},
			TextFace: fontFace,
			TextColor: &widget.ButtonTextColor{
				Idle: color.Black,
			},
		},
	}
}

// Toolbar is the strip above the canvas: rearrange and save buttons, the
// prompt input and a status line. It doubles as the board's notifier.
type Toolbar struct {
	prompt *widget.TextInput
	status *widget.Text
}

func (t *Toolbar) Notify(msg string) {
	if t == nil || t.status == nil {
		return
	}
	t.status.Label = msg
}

func (t *Toolbar) PromptText() string { return t.prompt.GetText() }

func (t *Toolbar) SetPromptText(s string) { t.prompt.SetText(s) }

type toolbarActions struct {
	onRearrange     func()
	onSave          func()
	onPromptChanged func(text string)
	onPromptSubmit  func(text string)
}

func buildUI(actions toolbarActions) (*ebitenui.UI, *Toolbar) {
	ui := &ebitenui.UI{}

	fontFace := loadFace(14)
	ui.PrimaryTheme = newTheme(&fontFace)

	buttonTextColor := &widget.ButtonTextColor{
		Idle:     color.Black,
		Hover:    color.Black,
		Pressed:  color.RGBA{0, 0, 200, 255},
		Disabled: color.Gray{Y: 128},
	}

	bar := widget.NewContainer(
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(0, toolbarHeight),
		),
		widget.ContainerOpts.Layout(
			widget.NewRowLayout(
				widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
				widget.RowLayoutOpts.Spacing(8),
			),
		),
		widget.ContainerOpts.BackgroundImage(solidNineSlice(color.RGBA{220, 220, 240, 255})),
	)

	button := func(label string, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(ui.PrimaryTheme.ButtonTheme.Image),
			widget.ButtonOpts.Text(label, &fontFace, buttonTextColor),
			widget.ButtonOpts.WidgetOpts(
				widget.WidgetOpts.MinSize(96, 40),
			),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				if onClick != nil {
					onClick()
				}
			}),
		)
	}
	bar.AddChild(button("Rearrange", actions.onRearrange))
	bar.AddChild(button("Save", actions.onSave))

	promptLabel := widget.NewLabel(
		widget.LabelOpts.Text("Prompt", &fontFace, &widget.LabelColor{Idle: color.Black, Disabled: color.Gray{Y: 140}}),
	)
	prompt := widget.NewTextInput(
		widget.TextInputOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(420, 28),
		),
		widget.TextInputOpts.Image(&widget.TextInputImage{
			Idle:     solidNineSlice(color.RGBA{245, 245, 245, 255}),
			Disabled: solidNineSlice(color.RGBA{200, 200, 200, 255}),
		}),
		widget.TextInputOpts.Color(&widget.TextInputColor{
			Idle:     color.Black,
			Disabled: color.Gray{Y: 120},
			Caret:    color.Black,
		}),
		widget.TextInputOpts.Face(&fontFace),
		widget.TextInputOpts.ChangedHandler(func(args *widget.TextInputChangedEventArgs) {
			if actions.onPromptChanged != nil {
				actions.onPromptChanged(args.InputText)
			}
		}),
		widget.TextInputOpts.SubmitOnEnter(true),
		widget.TextInputOpts.SubmitHandler(func(args *widget.TextInputChangedEventArgs) {
			if actions.onPromptSubmit != nil {
				actions.onPromptSubmit(args.InputText)
			}
		}),
	)
	status := widget.NewText(
		widget.TextOpts.Text("", &fontFace, color.RGBA{60, 60, 60, 255}),
	)

	bar.AddChild(promptLabel)
	bar.AddChild(prompt)
	bar.AddChild(status)

	// Root container: the toolbar is pinned to the top, the canvas is drawn
	// underneath it by the game.
	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	bar.GetWidget().LayoutData = widget.AnchorLayoutData{
		HorizontalPosition: widget.AnchorLayoutPositionStart,
		VerticalPosition:   widget.AnchorLayoutPositionStart,
		StretchHorizontal:  true,
	}
	root.AddChild(bar)
	ui.Container = root

	return ui, &Toolbar{prompt: prompt, status: status}
}
