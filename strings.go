package h11

// Shared byte-string constants, grounded on fasthttp's strings.go.
var (
	strCRLF    = []byte("\r\n")
	strColon   = []byte(":")
	strComma   = []byte(",")
	strSemi    = []byte(";")

	strHTTP10 = []byte("HTTP/1.0")
	strHTTP11 = []byte("HTTP/1.1")

	strVersion10 = []byte("1.0")
	strVersion11 = []byte("1.1")

	strConnection       = []byte("Connection")
	strContentLength    = []byte("Content-Length")
	strTransferEncoding = []byte("Transfer-Encoding")
	strHost             = []byte("Host")
	strExpect           = []byte("Expect")

	strClose           = []byte("close")
	strKeepAlive       = []byte("keep-alive")
	strChunked         = []byte("chunked")
	str100Continue     = []byte("100-continue")

	strGET     = []byte("GET")
	strHEAD    = []byte("HEAD")
	strCONNECT = []byte("CONNECT")
)
