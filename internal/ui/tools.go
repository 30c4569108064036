package ui

import (
	"fmt"

	"InpaintBoard/internal/editor"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// BrushRange bounds the brush size slider.
type BrushRange struct {
	Min, Max, Default float64
}

// compareButton shows the original image while it is held down.
type compareButton struct {
	widget.BaseWidget
	toggle *editor.Toggle
}

var _ desktop.Mouseable = (*compareButton)(nil)

func newCompareButton(toggle *editor.Toggle) *compareButton {
	c := &compareButton{toggle: toggle}
	c.ExtendBaseWidget(c)
	return c
}

func (c *compareButton) CreateRenderer() fyne.WidgetRenderer {
	icon := widget.NewIcon(theme.VisibilityIcon())
	label := widget.NewLabel("Hold to compare")
	return widget.NewSimpleRenderer(container.NewHBox(icon, label))
}

func (c *compareButton) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button == desktop.MouseButtonPrimary {
		c.toggle.Activate()
	}
}

func (c *compareButton) MouseUp(*desktop.MouseEvent) { c.toggle.Deactivate() }

// MouseOut ends the comparison when the pointer leaves while still pressed.
func (c *compareButton) MouseOut() { c.toggle.Deactivate() }

func (c *compareButton) MouseIn(*desktop.MouseEvent)    {}
func (c *compareButton) MouseMoved(*desktop.MouseEvent) {}

// NewToolbar builds the row of editor controls.
func NewToolbar(a *App, brush BrushRange) fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), a.showOpen),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), a.showExport),
	)

	sizeLabel := widget.NewLabel(fmt.Sprintf("%.0f px", brush.Default))
	brushSlider := widget.NewSlider(brush.Min, brush.Max)
	brushSlider.Step = 1
	brushSlider.SetValue(brush.Default)
	brushSlider.OnChanged = func(val float64) {
		a.ctrl.SetBrushSize(val)
		sizeLabel.SetText(fmt.Sprintf("%.0f px", val))
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(180, 35)), brushSlider)

	return container.NewHBox(
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Brush:"),
		sliderContainer,
		sizeLabel,
		widget.NewSeparator(),
		newCompareButton(a.toggle),
		layout.NewSpacer(),
	)
}
