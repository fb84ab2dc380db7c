package logger

import (
	"log"
	"os"
)

var (
	InfoLogger  *log.Logger
	ErrorLogger *log.Logger
	DebugLogger *log.Logger
)

func Init() {
	InfoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	DebugLogger = log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
}

// ensure guards against packages logging before main calls Init.
func ensure() {
	if InfoLogger == nil {
		Init()
	}
}

func Info(msg string) {
	ensure()
	InfoLogger.Println(msg)
}

func Infof(format string, v ...interface{}) {
	ensure()
	InfoLogger.Printf(format, v...)
}

func Error(msg string) {
	ensure()
	ErrorLogger.Println(msg)
}

func Errorf(format string, v ...interface{}) {
	ensure()
	ErrorLogger.Printf(format, v...)
}

func Debug(msg string) {
	ensure()
	DebugLogger.Println(msg)
}

func Debugf(format string, v ...interface{}) {
	ensure()
	DebugLogger.Printf(format, v...)
}

func Fatal(msg string) {
	ensure()
	ErrorLogger.Fatal(msg)
}

func Fatalf(format string, v ...interface{}) {
	ensure()
	ErrorLogger.Fatalf(format, v...)
}
