package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"portal-widgets/config"
	"portal-widgets/currency"

	"go.uber.org/zap"
)

func main() {
	envFile := flag.String("env", "", "Path to .env file")
	ratesFile := flag.String("rates", "", "Path to currency rates JSON (overrides CALC_RATES_FILE)")
	from := flag.String("from", "PLN", "Initial source currency")
	to := flag.String("to", "PLN", "Initial target currency")
	flag.Parse()

	cfg, err := config.Load(nil, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *ratesFile != "" {
		cfg.Calculator.RatesFile = *ratesFile
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	rates, err := currency.LoadRatesFile(cfg.Calculator.RatesFile)
	if err != nil {
		logger.Fatal("Failed to load currency rates", zap.String("file", cfg.Calculator.RatesFile), zap.Error(err))
	}

	conv := currency.NewConverter(rates, currency.WithMaxAmount(cfg.Calculator.MaxAmount))
	calc := currency.NewCalculator(conv,
		currency.WithMaxDigits(cfg.Calculator.MaxDigits),
		currency.WithLogger(logger),
	)
	if err := selectCodes(calc, *from, *to); err != nil {
		logger.Fatal("Invalid initial selection", zap.Error(err))
	}

	fmt.Println("Type an amount, :from XXX, :to XXX, :swap, :codes or :quit")
	if err := run(os.Stdin, os.Stdout, calc); err != nil {
		logger.Fatal("Calculator stopped", zap.Error(err))
	}
}

func selectCodes(calc *currency.Calculator, from, to string) error {
	fromCode, err := currency.ParseCode(from)
	if err != nil {
		return err
	}
	toCode, err := currency.ParseCode(to)
	if err != nil {
		return err
	}
	return calc.Select(fromCode, toCode)
}

// run reads one command or amount per line and prints the calculator state after each
func run(in io.Reader, out io.Writer, calc *currency.Calculator) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		cmd, arg, _ := strings.Cut(line, " ")
		sel := calc.Selection()
		switch cmd {
		case ":quit", ":q":
			return nil
		case ":swap":
			calc.Swap()
		case ":from":
			if err := selectCodes(calc, arg, sel.To.String()); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
		case ":to":
			if err := selectCodes(calc, sel.From.String(), arg); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
		case ":codes":
			codes := calc.Codes().Codes()
			names := make([]string, len(codes))
			for i, c := range codes {
				names[i] = c.String()
			}
			fmt.Fprintln(out, strings.Join(names, " "))
			continue
		default:
			calc.Input(line)
		}

		printState(out, calc)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

func printState(out io.Writer, calc *currency.Calculator) {
	sel := calc.Selection()
	display := calc.Display()
	if display == "" {
		display = "-"
	}
	fmt.Fprintf(out, "%s %s = %s %s\n", orDash(calc.Amount()), sel.From, display, sel.To)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
