//go:build windows

package icon

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Win32 GDI/shell bindings. x/sys/windows does not wrap the icon and
// DIB APIs, so the procs are loaded lazily from the system DLLs.
var (
	shell32 = windows.NewLazySystemDLL("shell32.dll")
	user32  = windows.NewLazySystemDLL("user32.dll")
	gdi32   = windows.NewLazySystemDLL("gdi32.dll")

	procSHGetFileInfoW     = shell32.NewProc("SHGetFileInfoW")
	procGetIconInfo        = user32.NewProc("GetIconInfo")
	procDrawIconEx         = user32.NewProc("DrawIconEx")
	procDestroyIcon        = user32.NewProc("DestroyIcon")
	procGetDC              = user32.NewProc("GetDC")
	procReleaseDC          = user32.NewProc("ReleaseDC")
	procCreateCompatibleDC = gdi32.NewProc("CreateCompatibleDC")
	procDeleteDC           = gdi32.NewProc("DeleteDC")
	procCreateDIBSection   = gdi32.NewProc("CreateDIBSection")
	procSelectObject       = gdi32.NewProc("SelectObject")
	procDeleteObject       = gdi32.NewProc("DeleteObject")
	procGetObjectW         = gdi32.NewProc("GetObjectW")
)

const (
	shgfiIcon              = 0x000000100
	shgfiLargeIcon         = 0x000000000
	shgfiUseFileAttributes = 0x000000010

	diNormal = 0x0003
	diMask   = 0x0001

	biRGB        = 0
	dibRGBColors = 0
)

type shFileInfo struct {
	HIcon        windows.Handle
	IIcon        int32
	DwAttributes uint32
	SzDisplay    [260]uint16
	SzTypeName   [80]uint16
}

type iconInfo struct {
	FIcon    int32
	XHotspot uint32
	YHotspot uint32
	HbmMask  windows.Handle
	HbmColor windows.Handle
}

type gdiBitmap struct {
	Type       int32
	Width      int32
	Height     int32
	WidthBytes int32
	Planes     uint16
	BitsPixel  uint16
	Bits       uintptr
}

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

type bitmapInfo struct {
	Header bitmapInfoHeader
	Colors [1]uint32
}

// windowsExtractor rasterizes shell icons. Calls are serialized: the
// render shares per-process GDI state and concurrent DrawIconEx calls
// on some drivers corrupt the output.
type windowsExtractor struct {
	mu sync.Mutex
}

func newPlatformExtractor() Extractor { return &windowsExtractor{} }

// Extract resolves the shell icon for path and rasterizes it to PNG.
// If the file exists, the literal file's icon is preferred; otherwise
// (or when that lookup fails) the file-type association supplies one,
// which still yields a recognizable icon for tools referenced by name.
func (e *windowsExtractor) Extract(path string) (*Icon, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pathW, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, fmt.Errorf("encoding path: %w", err)
	}

	var hicon windows.Handle
	if _, statErr := os.Stat(path); statErr == nil {
		hicon = loadHIcon(pathW, false)
	}
	if hicon == 0 {
		hicon = loadHIcon(pathW, true)
	}
	if hicon == 0 {
		return nil, ErrNoIcon
	}
	defer procDestroyIcon.Call(uintptr(hicon))

	raw, width, height, err := rasterize(hicon)
	if err != nil {
		return nil, err
	}

	// Buffers without a single nonzero alpha byte come from legacy
	// masked icons; synthesize alpha from a DI_MASK render pass.
	var maskAlpha []byte
	if !anyAlpha(raw) {
		maskAlpha = renderMaskAlpha(hicon, width, height)
	}

	data, err := Convert(raw, width, height, maskAlpha)
	if err != nil {
		return nil, err
	}
	return &Icon{
		MIME:    "image/png",
		Source:  SourceExtraction,
		Version: ExtractionVersion,
		Data:    data,
	}, nil
}

func loadHIcon(pathW *uint16, useFileAttributes bool) windows.Handle {
	var info shFileInfo
	flags := uintptr(shgfiIcon | shgfiLargeIcon)
	if useFileAttributes {
		flags |= shgfiUseFileAttributes
	}
	ret, _, _ := procSHGetFileInfoW.Call(
		uintptr(unsafe.Pointer(pathW)),
		0,
		uintptr(unsafe.Pointer(&info)),
		unsafe.Sizeof(info),
		flags,
	)
	if ret == 0 {
		return 0
	}
	return info.HIcon
}

// rasterize draws the icon into a top-down 32bpp DIB and copies the
// pixel memory into process-owned storage. The copy happens before any
// GDI teardown (the defers below), so the returned slice never aliases
// freed native memory.
func rasterize(hicon windows.Handle) ([]byte, int, int, error) {
	hdc, _, _ := procGetDC.Call(0)
	if hdc == 0 {
		return nil, 0, 0, fmt.Errorf("GetDC failed")
	}
	defer procReleaseDC.Call(0, hdc)

	memDC, _, _ := procCreateCompatibleDC.Call(hdc)
	if memDC == 0 {
		return nil, 0, 0, fmt.Errorf("CreateCompatibleDC failed")
	}
	defer procDeleteDC.Call(memDC)

	var info iconInfo
	ret, _, _ := procGetIconInfo.Call(uintptr(hicon), uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		return nil, 0, 0, fmt.Errorf("GetIconInfo failed")
	}
	if info.HbmColor != 0 {
		defer procDeleteObject.Call(uintptr(info.HbmColor))
	}
	if info.HbmMask != 0 {
		defer procDeleteObject.Call(uintptr(info.HbmMask))
	}

	width, height := iconDimensions(&info)

	bits, dib, err := createDIB(memDC, width, height)
	if err != nil {
		return nil, 0, 0, err
	}
	defer procDeleteObject.Call(uintptr(dib))

	old, _, _ := procSelectObject.Call(memDC, uintptr(dib))
	defer procSelectObject.Call(memDC, old)

	procDrawIconEx.Call(memDC, 0, 0, uintptr(hicon),
		uintptr(width), uintptr(height), 0, 0, diNormal)

	n := width * height * 4
	raw := make([]byte, n)
	copy(raw, unsafe.Slice((*byte)(bits), n))
	return raw, width, height, nil
}

// renderMaskAlpha draws the icon's AND mask into a white-filled DIB and
// thresholds it into a per-pixel alpha channel: mask bit set (white)
// means transparent, clear (black) means opaque. Returns nil on any
// failure so the caller falls back to the black-pixel heuristic.
func renderMaskAlpha(hicon windows.Handle, width, height int) []byte {
	hdc, _, _ := procGetDC.Call(0)
	if hdc == 0 {
		return nil
	}
	defer procReleaseDC.Call(0, hdc)

	dc, _, _ := procCreateCompatibleDC.Call(hdc)
	if dc == 0 {
		return nil
	}
	defer procDeleteDC.Call(dc)

	bits, dib, err := createDIB(dc, width, height)
	if err != nil {
		return nil
	}
	defer procDeleteObject.Call(uintptr(dib))

	n := width * height
	px := unsafe.Slice((*uint32)(bits), n)
	for i := range px {
		px[i] = 0xFFFFFFFF
	}

	old, _, _ := procSelectObject.Call(dc, uintptr(dib))
	defer procSelectObject.Call(dc, old)

	procDrawIconEx.Call(dc, 0, 0, uintptr(hicon),
		uintptr(width), uintptr(height), 0, 0, diMask)

	alpha := make([]byte, n)
	for i, p := range px {
		if byte(p&0xFF) > 127 {
			alpha[i] = 0
		} else {
			alpha[i] = 255
		}
	}
	return alpha
}

func createDIB(dc uintptr, width, height int) (unsafe.Pointer, windows.Handle, error) {
	bmi := bitmapInfo{
		Header: bitmapInfoHeader{
			Width: int32(width),
			// Negative height requests a top-down DIB, which is what
			// the converter expects; no vertical flip step needed.
			Height:      int32(-height),
			Planes:      1,
			BitCount:    32,
			Compression: biRGB,
		},
	}
	bmi.Header.Size = uint32(unsafe.Sizeof(bmi.Header))

	var bits unsafe.Pointer
	dib, _, _ := procCreateDIBSection.Call(dc,
		uintptr(unsafe.Pointer(&bmi)), dibRGBColors,
		uintptr(unsafe.Pointer(&bits)), 0, 0)
	if dib == 0 || bits == nil {
		if dib != 0 {
			procDeleteObject.Call(dib)
		}
		return nil, 0, fmt.Errorf("CreateDIBSection failed")
	}
	return bits, windows.Handle(dib), nil
}

// iconDimensions reads the icon's pixel size from its backing bitmaps,
// clamped to [1,512] per axis. Falls back to 32x32 when introspection
// fails on both bitmaps.
func iconDimensions(info *iconInfo) (int, int) {
	var bmp gdiBitmap

	if info.HbmColor != 0 {
		got, _, _ := procGetObjectW.Call(uintptr(info.HbmColor),
			unsafe.Sizeof(bmp), uintptr(unsafe.Pointer(&bmp)))
		if got > 0 && bmp.Width > 0 && bmp.Height > 0 {
			return clampDim(int(bmp.Width)), clampDim(int(bmp.Height))
		}
	}

	if info.HbmMask != 0 {
		got, _, _ := procGetObjectW.Call(uintptr(info.HbmMask),
			unsafe.Sizeof(bmp), uintptr(unsafe.Pointer(&bmp)))
		if got > 0 && bmp.Width > 0 && bmp.Height > 0 {
			h := int(bmp.Height)
			if info.HbmColor == 0 {
				// Monochrome icon: the mask stacks the AND and XOR
				// halves, so the real height is half the bitmap's.
				h /= 2
			}
			return clampDim(int(bmp.Width)), clampDim(h)
		}
	}

	return 32, 32
}

func anyAlpha(bgra []byte) bool {
	for i := 3; i < len(bgra); i += 4 {
		if bgra[i] != 0 {
			return true
		}
	}
	return false
}
